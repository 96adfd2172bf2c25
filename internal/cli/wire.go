package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"mvcscan/config"
	"mvcscan/internal/adapter/chunker"
	"mvcscan/internal/adapter/csharp"
	"mvcscan/internal/adapter/fs"
	"mvcscan/internal/adapter/memstore"
	"mvcscan/internal/adapter/routemap"
	"mvcscan/internal/adapter/store"
	"mvcscan/internal/port"
	"mvcscan/internal/usecase"
)

func conventionsFrom(c *config.Config) csharp.Conventions {
	conv := csharp.DefaultConventions()
	cc := c.Conventions
	if cc.ControllerSuffix != "" {
		conv.ControllerSuffix = cc.ControllerSuffix
	}
	if cc.PersistenceMarker != "" {
		conv.PersistenceMarker = cc.PersistenceMarker
	}
	if cc.CollectionMarker != "" {
		conv.CollectionMarker = cc.CollectionMarker
	}
	if cc.TemplateExtension != "" {
		conv.TemplateExtension = cc.TemplateExtension
	}
	if len(cc.ModelSuffixes) > 0 {
		conv.ModelSuffixes = cc.ModelSuffixes
	}
	if len(cc.ValidationAnnotations) > 0 {
		conv.ValidationAnnotations = cc.ValidationAnnotations
	}
	return conv
}

func newWalker(c *config.Config) *fs.Walker {
	return fs.NewWalker(c.Scan.Includes, c.Scan.Excludes)
}

func newParseUseCase(c *config.Config, log *slog.Logger) *usecase.ParseUseCase {
	classifier := chunker.NewClassifier(c.Dialects.Structured, c.Dialects.Template, c.Dialects.Script)
	parser := csharp.NewParser()
	conv := conventionsFrom(c)

	chk := chunker.NewCompositeChunker(classifier,
		chunker.NewCSharpExtractor(parser, conv, log),
		chunker.NewRazorExtractor(),
		chunker.NewScriptExtractor(),
	)
	return usecase.NewParseUseCase(
		newWalker(c),
		fs.Reader{},
		chk,
		routemap.NewBuilder(classifier, parser, conv),
		log,
	)
}

// openStore opens the result store for root and discards stale results when
// the schema or the conventions changed.
func openStore(c *config.Config, root string, log *slog.Logger) (*store.BoltStore, error) {
	dbPath := c.StorePath(root)
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}

	rebuilt, err := st.Prepare(conventionsFrom(c).Hash())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to prepare result store: %w", err)
	}
	if rebuilt {
		log.Info("conventions changed, stored results cleared", slog.String("store", dbPath))
	}
	return st, nil
}

// resultStore returns an in-memory store when inMemory is set, otherwise the
// bolt store of root. The close func is never nil.
func resultStore(c *config.Config, root string, inMemory bool, log *slog.Logger) (port.ResultStore, func() error, error) {
	if inMemory {
		return memstore.NewMemoryStore(), func() error { return nil }, nil
	}
	st, err := openStore(c, root, log)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

// resolveDir returns the absolute directory argument or the root directory.
func resolveDir(args []string) (string, error) {
	path := GetRootDir()
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return abs, nil
}

func writeJSON(stdout io.Writer, out string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if out == "" || out == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0644)
}

// newProgress renders a progress bar on stderr, sized on the first callback.
func newProgress(description string) usecase.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", description, formatDuration(eta)))
			}
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
