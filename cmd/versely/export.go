package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/versely/versely/internal/adapters/secondary/songfile"
	"github.com/versely/versely/internal/domain/entities"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [directory]",
	Short: "Export the song library to .song files",
	Long: `Export every song in the library as a .song file: YAML frontmatter
with title, author, and background, followed by the lyrics. The target
directory defaults to the current one.

Example:
  versely export hymns/
  versely export --db /var/lib/versely/library.db backup/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportDB string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDB, "db", "", "Path to the sqlite database (overrides config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = exportDB
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
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

	songs, err := app.library.ListCollections(cmd.Context(), entities.KindSong)
	if err != nil {
		return fmt.Errorf("listing songs: %w", err)
	}

	for _, song := range songs {
		lyrics, err := app.library.Text(cmd.Context(), song.Ref())
		if err != nil {
			return fmt.Errorf("loading lyrics for %q: %w", song.Title, err)
		}

		background := ""
		if len(song.SlideIDs) > 0 {
			if first, err := store.GetSlide(cmd.Context(), song.SlideIDs[0]); err == nil {
				background = first.Background()
			}
		}

		file := songfile.SongFile{
			Title:      song.Title,
			Author:     song.Description,
			Background: background,
			Lyrics:     lyrics,
		}
		data, err := file.Marshal()
		if err != nil {
			return fmt.Errorf("rendering %q: %w", song.Title, err)
		}

		path := filepath.Join(dir, songFileName(song.Title))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %q to %s\n", song.Title, path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d songs\n", len(songs))
	return nil
}

// songFileName derives a filesystem-safe .song name from a title.
func songFileName(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug + ".song"
}
