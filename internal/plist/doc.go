// Package plist injects the org-protocol URL scheme declaration into an XML
// property list.
//
// It is deliberately not a general plist library. [Rewrite] streams the
// document through encoding/xml exactly once and splices a fixed fragment in
// front of the first </dict>, copying every other byte through untouched.
// [HasURLScheme] lets callers skip the rewrite when the scheme is already
// declared.
package plist
