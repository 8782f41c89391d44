package plist

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// Scheme is the URL scheme the injected fragment registers.
const Scheme = "org-protocol"

// URLTypesFragment declares the org-protocol URL scheme. It is inserted
// verbatim, line breaks included, as the last child of the root dictionary.
const URLTypesFragment = `<key>CFBundleURLTypes</key>
<array>
  <dict>
    <key>CFBundleURLName</key>
    <string>org-protocol handler</string>
    <key>CFBundleURLSchemes</key>
    <array>
      <string>org-protocol</string>
    </array>
  </dict>
</array>
`

// ErrNoDict indicates the document has no dict element to inject into.
var ErrNoDict = errors.New("plist has no dict element")

// fragmentErr is non-nil if URLTypesFragment does not tokenize cleanly.
var fragmentErr = validateFragment(URLTypesFragment)

// Rewrite returns src with URLTypesFragment inserted as the last child of the
// first dict element in document order, immediately before its closing tag.
// Every other byte of src is copied through unchanged, so removing the
// fragment from the result gives back src exactly.
//
// Dicts nested inside the target are passed over; only the dict that opened
// first receives the fragment. This is not always the first </dict> in the
// file: a nested dict closes earlier and is skipped. The input is tokenized once and no tree is
// built. A self-closing <dict/> target is expanded to an explicit start and
// end tag around the fragment.
//
// Errors are marked with errors.ErrMalformedInput. Nothing is returned
// alongside an error, so a caller cannot accidentally persist partial output.
func Rewrite(src []byte) ([]byte, error) {
	if fragmentErr != nil {
		return nil, fragmentErr
	}

	dec := newDecoder(bytes.NewReader(src))

	var out bytes.Buffer
	out.Grow(len(src) + len(URLTypesFragment) + len("</dict>"))

	var (
		cursor      int64 // src[:cursor] has been written to out
		depth       int
		targetDepth int // depth of the first dict; 0 until one opens
		dictStart   int64
		afterDict   bool // previous token was the target's start tag
		injected    bool
	)

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(errors.Wrap(err, "parsing plist"))
		}
		if injected {
			// Keep tokenizing so trailing garbage is still rejected
			continue
		}

		selfClosed := afterDict && bytes.HasSuffix(src[dictStart:offset], []byte("/>"))
		afterDict = false

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "dict" && targetDepth == 0 {
				targetDepth = depth
				dictStart = offset
				afterDict = true
			}
		case xml.EndElement:
			if t.Name.Local == "dict" && depth == targetDepth {
				if selfClosed {
					// Synthesized end of <dict/>; offset sits just past "/>"
					tag := bytes.TrimSuffix(src[dictStart:offset], []byte("/>"))
					out.Write(src[cursor:dictStart])
					out.Write(tag)
					out.WriteString(">")
					out.WriteString(URLTypesFragment)
					out.WriteString("</dict>")
				} else {
					out.Write(src[cursor:offset])
					out.WriteString(URLTypesFragment)
				}
				cursor = offset
				injected = true
			}
			depth--
		}
	}

	if !injected {
		return nil, malformed(ErrNoDict)
	}

	out.Write(src[cursor:])
	return out.Bytes(), nil
}

// HasURLScheme reports whether src already declares scheme inside a
// CFBundleURLSchemes array.
func HasURLScheme(src []byte, scheme string) (bool, error) {
	dec := newDecoder(bytes.NewReader(src))

	var (
		text         strings.Builder
		capturing    bool
		lastKey      string
		depth        int
		schemesDepth int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, malformed(errors.Wrap(err, "parsing plist"))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "key", "string":
				capturing = true
				text.Reset()
			case "array":
				if lastKey == "CFBundleURLSchemes" && schemesDepth == 0 {
					schemesDepth = depth
				}
			}
			if t.Name.Local != "key" {
				lastKey = ""
			}
		case xml.CharData:
			if capturing {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "key":
				lastKey = strings.TrimSpace(text.String())
				capturing = false
			case "string":
				if schemesDepth > 0 && strings.TrimSpace(text.String()) == scheme {
					return true, nil
				}
				capturing = false
			case "array":
				if depth == schemesDepth {
					schemesDepth = 0
				}
			}
			depth--
		}
	}
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return dec
}

func validateFragment(fragment string) error {
	dec := newDecoder(strings.NewReader(fragment))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "invalid URL types fragment")
		}
	}
}

func malformed(err error) error {
	return errors.WithHint(
		errors.Mark(err, errors.ErrMalformedInput),
		"The helper bundle's Info.plist is not a valid property list; reinstall to regenerate it",
	)
}
