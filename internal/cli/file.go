package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mvcscan/internal/domain"
	"mvcscan/internal/usecase"
)

var (
	fileOut         string
	sourceName      string
	sourceInput     string
	sourceOut       string
	incrementalOut  string
	incrementalSave bool
)

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Extract chunks from a single file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := newParseUseCase(GetConfig(), logger).ParseFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), fileOut, chunkOutput{Chunks: chunks})
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source --name <file name>",
	Short: "Extract chunks from source text read from stdin or --input",
	Long: `Extracts chunks from raw source text. The dialect is chosen from the
extension of --name, which is also used to build chunk identifiers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sourceName == "" {
			return fmt.Errorf("--name is required")
		}

		var data []byte
		var err error
		if sourceInput == "" || sourceInput == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(sourceInput)
		}
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}

		chunks, err := newParseUseCase(GetConfig(), logger).ParseSource(sourceName, string(data))
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), sourceOut, chunkOutput{Chunks: chunks})
	},
}

var incrementalCmd = &cobra.Command{
	Use:   "incremental <path>...",
	Short: "Re-extract a list of changed files",
	Long: `Re-extracts the given files. Missing and unsupported paths are skipped.
With --store the result store is updated and only chunks of files whose
content changed since the last sync are printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIncremental,
}

type chunkOutput struct {
	Chunks []domain.Chunk `json:"chunks"`
}

type updatedOutput struct {
	UpdatedChunks []domain.Chunk `json:"updatedChunks"`
}

func init() {
	fileCmd.Flags().StringVarP(&fileOut, "out", "o", "", "write JSON to a file instead of stdout")

	sourceCmd.Flags().StringVar(&sourceName, "name", "", "file name the source belongs to")
	sourceCmd.Flags().StringVar(&sourceInput, "input", "", "read source from this file instead of stdin")
	sourceCmd.Flags().StringVarP(&sourceOut, "out", "o", "", "write JSON to a file instead of stdout")

	incrementalCmd.Flags().StringVarP(&incrementalOut, "out", "o", "", "write JSON to a file instead of stdout")
	incrementalCmd.Flags().BoolVar(&incrementalSave, "store", false, "update the result store of the root directory")

	rootCmd.AddCommand(fileCmd, sourceCmd, incrementalCmd)
}

func runIncremental(cmd *cobra.Command, args []string) error {
	parse := newParseUseCase(GetConfig(), logger)

	if !incrementalSave {
		chunks, err := parse.ParseIncremental(cmd.Context(), args)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), incrementalOut, updatedOutput{UpdatedChunks: chunks})
	}

	root, err := filepath.Abs(GetRootDir())
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	st, err := openStore(GetConfig(), root, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	chunks, err := usecase.NewSyncUseCase(parse, st).SyncPaths(cmd.Context(), args)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), incrementalOut, updatedOutput{UpdatedChunks: chunks})
}
