package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/internal/normalize"
	"github.com/mkostiv/scorebatch/internal/scan"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert HEIC/HEIF images to JPEG without recognizing them",
	Long: `Convert normalizes HEIC/HEIF images to JPEG siblings and leaves the
originals in place. With file arguments only those files are converted;
otherwise the scan root is walked and every HEIC/HEIF image found is
converted. Files already in a supported format are reported as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := execx.OSRunner{}

		convCfg := types.ConversionConfig{
			Backend: types.ConverterBackend(stringSetting(cmd, "backend", "conversion.backend")),
		}
		conv, err := normalize.NewConverter(convCfg, runner, toolOverrides.Resolve)
		if err != nil {
			return err
		}

		files := args
		if len(files) == 0 {
			root := stringSetting(cmd, "root", "scan.root")
			files, err = scan.Images(types.ScanConfig{Root: root})
			if err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
		}

		var converted, skipped, failed int
		for _, file := range files {
			res, err := normalize.Normalize(conv, file)
			switch {
			case err != nil:
				fmt.Fprintf(os.Stderr, "failed:    %s (%v)\n", file, err)
				failed++
			case res.Status == types.ConversionDone:
				fmt.Printf("converted: %s -> %s\n", file, res.Path)
				converted++
			default:
				fmt.Printf("skipped:   %s\n", file)
				skipped++
			}
		}

		fmt.Printf("\n%d converted, %d skipped, %d failed\n", converted, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d conversions failed", failed)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("root", "scores", "directory scanned when no files are given")
	convertCmd.Flags().String("backend", "auto", "converter backend: auto, sips, magick, or heif-convert")

	rootCmd.AddCommand(convertCmd)
}
