package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkostiv/scorebatch/internal/batch"
	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/internal/ledger"
	"github.com/mkostiv/scorebatch/internal/normalize"
	"github.com/mkostiv/scorebatch/internal/recognize"
	"github.com/mkostiv/scorebatch/internal/scan"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [root]",
	Short: "Convert and recognize every image under a directory",
	Long: `Process walks a directory for images (jpg, jpeg, png, webp, heic,
heif), converts HEIC/HEIF inputs to JPEG siblings, and invokes the
recognition tool on each resulting file, one file at a time. The tool's
own output is shown as it runs. A failed conversion skips that file;
the batch always runs to completion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := stringSetting(cmd, "root", "scan.root")
		if len(args) == 1 {
			root = args[0]
		}

		runner := execx.OSRunner{}
		resolve := toolOverrides.Resolve

		convCfg := types.ConversionConfig{
			Backend: types.ConverterBackend(stringSetting(cmd, "backend", "conversion.backend")),
		}
		conv, err := normalize.NewConverter(convCfg, runner, resolve)
		if err != nil {
			// HEIC conversion is only needed per-file; non-HEIC images
			// still process when no converter is installed.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			conv = normalize.Unavailable(err)
		}

		recCfg := types.RecognitionConfig{
			Command: stringSetting(cmd, "recognizer", "recognition.command"),
		}
		rec := recognize.New(recCfg, runner, resolve)
		if err := rec.Check(); err != nil {
			return err
		}

		if _, err := os.Stat(root); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: root directory %s does not exist\n", root)
		}
		files, err := scan.Images(types.ScanConfig{Root: root})
		if err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}

		recorder, finish := openRecorder(cmd, root)
		result := batch.Run(files, conv, rec, recorder, os.Stdout, os.Stderr)
		finish(result)

		if boolSetting(cmd, "strict", "strict") && result.HasFailures() {
			return fmt.Errorf("%d of %d files failed",
				result.ConvertFailed+result.RecognizeFailed, result.Total())
		}
		return nil
	},
}

// openRecorder opens the run ledger when one is configured. Ledger
// problems only warn: history is an aid, not a gate on the batch.
func openRecorder(cmd *cobra.Command, root string) (batch.Recorder, func(batch.Result)) {
	noop := func(batch.Result) {}

	path := stringSetting(cmd, "ledger", "ledger.path")
	if path == "" {
		return nil, noop
	}

	store, err := ledger.Open(types.LedgerConfig{Path: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger disabled: %v\n", err)
		return nil, noop
	}

	rec, err := ledger.NewRunRecorder(context.Background(), store, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger disabled: %v\n", err)
		store.Close()
		return nil, noop
	}

	return rec, func(result batch.Result) {
		if err := rec.Finish(context.Background(), result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ledger finish failed: %v\n", err)
		}
		fmt.Printf("Recorded as run %d; inspect with: scorebatch history --ledger %s --run %d\n",
			rec.RunID(), path, rec.RunID())
		store.Close()
	}
}

func init() {
	processCmd.Flags().String("root", "scores", "directory scanned for images")
	processCmd.Flags().String("backend", "auto", "converter backend: auto, sips, magick, or heif-convert")
	processCmd.Flags().String("recognizer", recognize.DefaultCommand, "recognition tool command")
	processCmd.Flags().String("ledger", "", "SQLite run-history database (empty disables)")
	processCmd.Flags().Bool("strict", false, "exit non-zero when any file failed")

	rootCmd.AddCommand(processCmd)
}
