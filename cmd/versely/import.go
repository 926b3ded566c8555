package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/versely/versely/internal/adapters/secondary/songfile"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.song> [file.song...]",
	Short: "Import .song files into the library",
	Long: `Import one or more .song files. Each file becomes a song
collection with its slides generated immediately. Lyrics are plain text
with blank lines separating slides; an optional YAML frontmatter block
carries title, author, and background.

Example:
  versely import amazing-grace.song
  versely import hymns/*.song --db /var/lib/versely/library.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var importDB string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDB, "db", "", "Path to the sqlite database (overrides config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = importDB
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	app := buildServices(store, cfg, logger)
	defer app.regenerator.Close()

	for _, path := range args {
		raw, err := os.ReadFile(path) // #nosec G304 - paths come from the command line
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		song, err := songfile.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		c, err := app.library.ImportSong(cmd.Context(), song.Title, song.Author, song.Background, song.Lyrics)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %s as %q (%d slides)\n", path, c.Title, len(c.SlideIDs))
	}

	return nil
}
