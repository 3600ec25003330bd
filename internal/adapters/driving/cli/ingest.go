package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/logger"
)

var (
	ingestWatch       bool
	ingestContentType string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Add files to the library",
	Long: `Extracts, chunks and embeds files into the user's library.

Directories are walked recursively; hidden files and directories are
skipped. With --watch, orion keeps running and re-ingests files that are
created or modified under the given paths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch paths and ingest changes")
	ingestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "content type override for every file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	ing := &ingester{
		cmd:     cmd,
		service: ingestService,
		email:   email,
		known:   make(map[string]domain.DocumentID),
	}

	var failed int
	for _, path := range files {
		if err := ing.ingestFile(cmd.Context(), path); err != nil {
			failed++
		}
	}
	cmd.Printf("Ingested %d of %d files\n", len(files)-failed, len(files))

	if ingestWatch {
		return watchPaths(cmd.Context(), args, ing)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(files))
	}
	return nil
}

// ingester ingests files for one user and remembers what it added,
// so a re-ingested file replaces its earlier document.
type ingester struct {
	cmd     *cobra.Command
	service driving.IngestService
	email   string
	known   map[string]domain.DocumentID
}

func (i *ingester) ingestFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read %s: %v", path, err)
		i.cmd.PrintErrf("  %s: %v\n", path, err)
		return err
	}

	contentType := ingestContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}

	result, err := i.service.Ingest(ctx, domain.IngestRequest{
		UserEmail:   i.email,
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		logger.Error("ingest %s: %v", path, err)
		i.cmd.PrintErrf("  %s: %v\n", path, err)
		return err
	}

	if previous, ok := i.known[path]; ok {
		if err := i.service.Delete(ctx, i.email, previous); err != nil {
			logger.Warn("remove previous version of %s: %v", path, err)
		}
	}
	i.known[path] = result.DocumentID

	i.cmd.Printf("  %s -> %s (%d chunks, %s)\n",
		path, result.DocumentID, result.ChunkCount, result.Duration.Round(time.Millisecond))
	return nil
}

// collectFiles expands directories into their non-hidden regular files.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files to ingest")
	}
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
