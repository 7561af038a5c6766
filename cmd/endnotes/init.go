package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/philong6297/endnotes/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/endnotes.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new endnotes configuration file",
		Long: `Init creates a new .endnotes configuration file in the current directory.

The generated file includes:
- Commented examples for the selector conventions
- Per-directory override examples
- Documentation for all available options

Examples:
  # Create .endnotes in current directory
  endnotes init

  # Create config file at a specific path
  endnotes init -o myconfig.yaml

  # Force overwrite existing file
  endnotes init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/endnotes.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - The site's public base URL")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Selector conventions per directory")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Path patterns to skip")

	return nil
}
