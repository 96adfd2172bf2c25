package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mvcscan/internal/adapter/watch"
	"mvcscan/internal/usecase"
)

var watchNoStore bool

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep the result store current while files change",
	Long: `Syncs the repository once, then watches it and re-extracts changed files
in debounced batches until interrupted. With --no-store results are kept in
memory and each batch prints the updated chunks as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoStore, "no-store", false, "keep results in memory instead of the result store")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := GetConfig()

	st, closeStore, err := resultStore(c, dir, watchNoStore, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sync := usecase.NewSyncUseCase(newParseUseCase(c, logger), st)
	result, err := sync.SyncRepository(ctx, dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (%d chunks)\n", dir, result.Chunks)

	walker := newWalker(c)
	w, err := watch.NewWatcher(c.Debounce(), walker.Excluded, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	err = w.Watch(dir, func(paths []string) {
		updated, err := sync.SyncPaths(ctx, paths)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("sync failed", slog.Any("error", err))
			}
			return
		}
		logger.Info("files changed",
			slog.Int("paths", len(paths)),
			slog.Int("updated_chunks", len(updated)))
		if watchNoStore && len(updated) > 0 {
			if err := writeJSON(out, "", updatedOutput{UpdatedChunks: updated}); err != nil {
				logger.Error("failed to write chunks", slog.Any("error", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	<-ctx.Done()
	if ctx.Err() == context.Canceled {
		logger.Info("watch stopped")
	}
	return nil
}
