// Package main provides the entry point for the endnotes CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for endnotes.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endnotes",
		Short: "Post-processor for generated static site HTML",
		Long: `Endnotes rewrites the HTML a static site generator produced.

It merges each page's rendered bibliography into the footnotes section,
optionally hardens external links and lazy-loads images, and can audit
referenced images for EXIF metadata that would identify the author.

Pages without the expected bibliography or footnotes markup are left
untouched, so the tool is safe to run over a whole site.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
