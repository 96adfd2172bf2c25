package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mvcscan/internal/usecase"
)

var (
	syncNoProgress bool
	syncJSON       bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Bring the result store up to date with a repository",
	Long: `Re-extracts files whose content changed since the last sync, removes
records of deleted files and rebuilds the stored route map and stats.

The store lives in .mvcscan/chunks.db unless store.path is configured. When
the naming conventions change the stored results are discarded and every
file is extracted again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncNoProgress, "no-progress", false, "disable the progress bar")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args)
	if err != nil {
		return err
	}

	st, err := openStore(GetConfig(), dir, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	parse := newParseUseCase(GetConfig(), logger)
	if !syncNoProgress {
		parse.WithProgress(newProgress("Syncing"))
	}

	result, err := usecase.NewSyncUseCase(parse, st).SyncRepository(cmd.Context(), dir)
	if err != nil {
		return err
	}

	if syncJSON {
		return writeJSON(cmd.OutOrStdout(), "", result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Synced %s\n", dir)
	fmt.Fprintf(out, "  Files parsed:  %d\n", result.FilesParsed)
	fmt.Fprintf(out, "  Files skipped: %d\n", result.FilesSkipped)
	fmt.Fprintf(out, "  Files deleted: %d\n", result.FilesDeleted)
	fmt.Fprintf(out, "  Chunks:        %d\n", result.Chunks)
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "  Errors:        %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "    - %s\n", e)
		}
	}
	return nil
}
