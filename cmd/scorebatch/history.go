package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkostiv/scorebatch/internal/ledger"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past batch runs",
	Long: `History reads the run ledger written by process --ledger and lists
past runs with their outcome counts. --run shows the per-file outcomes
of one run; --export writes the whole ledger to a YAML or JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := stringSetting(cmd, "ledger", "ledger.path")
		if path == "" {
			return fmt.Errorf("no ledger configured: pass --ledger or set ledger.path")
		}

		store, err := ledger.Open(types.LedgerConfig{Path: path})
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		if format, _ := cmd.Flags().GetString("export"); format != "" {
			out, _ := cmd.Flags().GetString("out")
			switch format {
			case "yaml":
				if out == "" {
					out = "scorebatch-history.yaml"
				}
				if err := store.ExportYAML(ctx, out); err != nil {
					return err
				}
			case "json":
				if out == "" {
					out = "scorebatch-history.json"
				}
				if err := store.ExportJSON(ctx, out); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown export format %q: use yaml or json", format)
			}
			fmt.Printf("Exported run history to %s\n", out)
			return nil
		}

		if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
			files, err := store.Files(ctx, runID)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Printf("No file records for run %d\n", runID)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tNORMALIZED\tSTATUS\tEXIT\tMS")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					f.Source, f.Normalized, f.Status, f.ExitCode, f.DurationMS)
			}
			return w.Flush()
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROOT\tSTARTED\tOK\tREC-FAIL\tCONV-FAIL")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.Root, r.StartedAt, r.Recognized, r.RecognizeFailed, r.ConvertFailed)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().String("ledger", "", "SQLite run-history database")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "show per-file outcomes for one run ID")
	historyCmd.Flags().String("export", "", "export the ledger: yaml or json")
	historyCmd.Flags().String("out", "", "export output path")

	rootCmd.AddCommand(historyCmd)
}
