// Command logbench is a terminal log analysis workbench: byte-offset
// indexed paging over files of arbitrary size, with filtering and
// pinned-line bookmarks.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alienxp03/logbench/internal/app"
	"github.com/alienxp03/logbench/internal/offsetindex"
	"github.com/alienxp03/logbench/internal/provider"
	"github.com/alienxp03/logbench/internal/session"
)

var (
	maxLines      int
	pageSize      int
	chunkSizeMB   int
	largeThMB     int
	dbPath        string
	include       string
	exclude       string
	timezone      string
	logFile       string
	explicitFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "logbench [file or directory]...",
	Short: "A terminal workbench for browsing and filtering large log files",
	Long: `logbench indexes log files by byte offset in a single streaming
pass and serves arbitrary line ranges without holding the file in
memory, so it stays responsive on files from a few KB to multiple GB.

Usage:
  logbench app.log                 # browse a single file
  logbench /var/log/myapp          # browse every log-like file under a directory
  logbench -e a.log,b.log          # browse an explicit file list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := explicitFiles
		if len(paths) == 0 {
			paths = expandArgs(args)
		}

		var logWriter io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("logbench: open log file: %w", err)
			}
			defer f.Close()
			logWriter = f
		}
		logger := slog.New(slog.NewTextHandler(logWriter, nil))

		if dbPath == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				dir = os.TempDir()
			}
			dbPath = filepath.Join(dir, "logbench", "lines.db")
			_ = os.MkdirAll(filepath.Dir(dbPath), 0o755)
		}

		model, err := app.New(app.Config{
			Paths:              paths,
			PageSize:           clampPageSize(pageSize),
			MaxLines:           maxLines,
			ChunkSize:          int64(chunkSizeMB) * 1024 * 1024,
			LargeFileThreshold: int64(largeThMB) * 1024 * 1024,
			DBPath:             dbPath,
			Include:            include,
			Exclude:            exclude,
			Timezone:           timezone,
			Logger:             logger,
		})
		if err != nil {
			return fmt.Errorf("logbench: %w", err)
		}
		defer model.Close()

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("logbench: %w", err)
		}
		return nil
	},
}

func clampPageSize(n int) int {
	if n < session.MinPageSize {
		return session.MinPageSize
	}
	if n > session.MaxPageSize {
		return session.MaxPageSize
	}
	return n
}

func init() {
	rootCmd.Flags().IntVarP(&maxLines, "max-lines", "m", 50000, "maxLines hint saved in the line store's meta slot (does not cap how many lines are kept)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 20000, "number of lines loaded per tail/page (2000-200000)")
	rootCmd.Flags().IntVar(&chunkSizeMB, "chunk-size", offsetindex.DefaultChunkSize/(1024*1024), "streaming scan chunk size, in MiB")
	rootCmd.Flags().IntVar(&largeThMB, "large-threshold", provider.LargeFileThreshold/(1024*1024), "file size, in MiB, above which a file is served index-only")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "path to the persisted line store (default: user cache dir)")
	rootCmd.Flags().StringSliceVarP(&explicitFiles, "files", "e", nil, "explicit comma-separated list of files to open")
	rootCmd.Flags().StringVarP(&include, "include", "i", "", "initial include filter pattern")
	rootCmd.Flags().StringVarP(&exclude, "exclude", "x", "", "exclude filter pattern (accepted, but not applied to filtering)")
	rootCmd.Flags().StringVar(&timezone, "timezone", "UTC", "display timezone for timestamps")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write diagnostic logs to this file instead of discarding them")
}

// expandArgs resolves each positional argument: a directory expands to
// every regular log-like file within it (this CLI ingests directories
// of rotated logs); a file passes through unchanged even if it doesn't
// exist yet.
func expandArgs(args []string) []string {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			out = append(out, a)
			continue
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		filepath.Walk(a, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return nil
			}
			if looksLikeLog(path) {
				out = append(out, path)
			}
			return nil
		})
	}
	return out
}

func looksLikeLog(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".log", ".txt", "":
		return true
	}
	return strings.Contains(ext, "log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
