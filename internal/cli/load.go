package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockdash/internal/ingest"
)

func newLoadCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "load [files...]",
		Short: "Load CSV/XLSX metrics files into the database, one table per file",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				files = rc.Config.Loader.Files
			}
			rep, err := ingest.NewLoader(rc.Log).LoadFiles(cmd.Context(), files, rc.Config.Store.Path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, res := range rep.Results {
				switch res.Status {
				case ingest.StatusLoaded:
					fmt.Fprintf(out, "%-8s %s -> %s (%d rows)\n", res.Status, res.Path, res.Table, res.Rows)
				default:
					fmt.Fprintf(out, "%-8s %s: %v\n", res.Status, res.Path, res.Err)
				}
			}
			return nil
		},
	}
}
