package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"invoicerag/internal/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path|glob>...",
	Short: "Index invoice PDFs",
	Long: `Extract text from the given PDF files, chunk it and index the chunks for
retrieval. Files that carry no usable text layer (scans) are recorded as
parse failures and skipped.

Globs use doublestar syntax:
  invoicerag ingest ./invoices/*.pdf
  invoicerag ingest 'archive/**/*.pdf'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched")
	}

	files := make([]domain.UploadFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.UploadFile{
			Filename:    filepath.Base(path),
			ContentType: "application/pdf",
			Data:        data,
		})
	}

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	batch, err := svc.ingest.IngestBatch(files, func(done, total int) {
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	fmt.Println()

	fmt.Printf("Processed %d file(s): %d indexed, %d failed\n", batch.Total, batch.Succeeded, batch.Failed)
	for _, result := range batch.Results {
		if result.Success {
			continue
		}
		fmt.Printf("  ✗ %s: %s\n", result.Filename, result.Error)
	}

	return nil
}

// expandPaths resolves literal paths and doublestar globs into a sorted,
// de-duplicated file list.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, arg := range args {
		if !containsGlobMeta(arg) {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("path does not exist: %s", arg)
			}
			if info.IsDir() {
				matches, err := doublestar.FilepathGlob(filepath.Join(arg, "**", "*.pdf"))
				if err != nil {
					return nil, fmt.Errorf("invalid path: %w", err)
				}
				for _, m := range matches {
					add(m)
				}
				continue
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func containsGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
