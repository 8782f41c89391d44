package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/org-protocol/cmd"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		outputDir, _ := c.Flags().GetString("dir")
		format, _ := c.Flags().GetString("format")
		if outputDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
		}

		if err := paths.EnsureDir(outputDir, 0o755); err != nil {
			return errors.Mark(errors.Wrap(err, "creating output directory"), errors.ErrFilesystem)
		}

		var err error
		switch format {
		case "markdown":
			err = doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler)
		case "man":
			err = doc.GenManTree(rootCmd, &doc.GenManHeader{
				Title:   "ORG-PROTOCOL-INSTALLER",
				Section: "1",
				Source:  "org-protocol-installer " + cmd.Version,
			}, outputDir)
		default:
			return errors.NewUserError(errors.Newf("unknown format %q", format), "Format must be one of: markdown, man")
		}
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "generating %s", format), errors.ErrFilesystem)
		}

		fmt.Fprintf(c.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().String("format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// org-protocol-installer_macos.md -> org-protocol-installer macos
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s"
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
