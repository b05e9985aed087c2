package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/internal/normalize"
	"github.com/mkostiv/scorebatch/internal/render"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [roots...]",
	Short: "Rasterize PDF and SVG scores into JPEG pages",
	Long: `Render walks each root for .pdf and .svg files and rasterizes them
into JPEGs under a rendered_jpegs/ directory that mirrors the source
tree. PDFs produce one JPEG per page through pdftoppm; SVGs go through
rsvg-convert or inkscape. Per-file failures are reported and the run
continues. --quality applies to PDF pages only; SVG output is encoded
at the converter backend's default quality.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.RenderConfig{
			Roots:   args,
			DPI:     intSetting(cmd, "dpi", "render.dpi"),
			Quality: intSetting(cmd, "quality", "render.quality"),
		}
		if len(cfg.Roots) == 0 {
			cfg.Roots = viper.GetStringSlice("render.roots")
		}
		if len(cfg.Roots) == 0 {
			cfg.Roots = []string{"."}
		}

		runner := execx.OSRunner{}
		resolve := toolOverrides.Resolve

		convCfg := types.ConversionConfig{
			Backend: types.ConverterBackend(stringSetting(cmd, "backend", "conversion.backend")),
		}
		conv, err := normalize.NewConverter(convCfg, runner, resolve)
		if err != nil {
			return err
		}

		opts := render.Options{RenderConfig: cfg}
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

		pdf := &render.PDFRenderer{Runner: runner, Resolve: resolve}
		svg := &render.SVGRenderer{Runner: runner, Resolve: resolve, Converter: conv}

		for _, root := range cfg.Roots {
			if err := render.ProcessRoot(root, pdf, svg, opts, os.Stdout, os.Stderr); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().Int("dpi", 300, "render resolution")
	renderCmd.Flags().Int("quality", 92, "JPEG quality 1-100 for PDF pages")
	renderCmd.Flags().Bool("dry-run", false, "print what would be rendered without invoking tools")
	renderCmd.Flags().String("backend", "auto", "JPEG encoder backend for SVG output: auto, sips, or magick")

	rootCmd.AddCommand(renderCmd)
}
