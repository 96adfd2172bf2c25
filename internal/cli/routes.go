package cli

import (
	"github.com/spf13/cobra"

	"mvcscan/internal/domain"
)

var routesOut string

var routesCmd = &cobra.Command{
	Use:   "routes [path]",
	Short: "Print the route map of a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir(args)
		if err != nil {
			return err
		}

		routes, err := newParseUseCase(GetConfig(), logger).ExtractRoutes(cmd.Context(), dir)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), routesOut, struct {
			Routes []domain.RouteEntry `json:"routes"`
		}{routes})
	},
}

func init() {
	routesCmd.Flags().StringVarP(&routesOut, "out", "o", "", "write JSON to a file instead of stdout")
	rootCmd.AddCommand(routesCmd)
}
