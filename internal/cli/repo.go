package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mvcscan/internal/usecase"
)

var (
	repoModules    []string
	repoOut        string
	repoStore      bool
	repoNoProgress bool
)

var repoCmd = &cobra.Command{
	Use:   "repo [path]",
	Short: "Scan a repository and print chunks, route map and stats",
	Long: `Scans every supported file below the directory and prints a JSON object
with the chunks, the route map and aggregate stats.

With --modules only files below a directory segment matching one of the
names are scanned, and their chunks are tagged with that module.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepo,
}

func init() {
	repoCmd.Flags().StringSliceVar(&repoModules, "modules", nil, "restrict the scan to these module directories")
	repoCmd.Flags().StringVarP(&repoOut, "out", "o", "", "write JSON to a file instead of stdout")
	repoCmd.Flags().BoolVar(&repoStore, "store", false, "also persist the results in the result store")
	repoCmd.Flags().BoolVar(&repoNoProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(repoCmd)
}

func runRepo(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args)
	if err != nil {
		return err
	}

	modules := make([]string, 0, len(repoModules))
	for _, m := range repoModules {
		if m = strings.TrimSpace(m); m != "" {
			modules = append(modules, m)
		}
	}

	parse := newParseUseCase(GetConfig(), logger)
	if !repoNoProgress {
		parse.WithProgress(newProgress("Scanning"))
	}

	result, err := parse.ParseRepository(cmd.Context(), dir, modules)
	if err != nil {
		return err
	}

	if repoStore {
		st, err := openStore(GetConfig(), dir, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		// the store records whole files, so a module-filtered scan is synced in full
		sync := usecase.NewSyncUseCase(newParseUseCase(GetConfig(), logger), st)
		if _, err := sync.SyncRepository(cmd.Context(), dir); err != nil {
			return fmt.Errorf("failed to store results: %w", err)
		}
	}

	return writeJSON(cmd.OutOrStdout(), repoOut, result)
}
