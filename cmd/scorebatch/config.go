package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/mkostiv/scorebatch/internal/recognize"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective pipeline configuration",
	Long: `Config prints the configuration every command would run with, after
merging the config file, SCOREBATCH_* environment variables, and
defaults. The output is valid YAML for a scorebatch.yaml config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := effectiveConfig()
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

// effectiveConfig assembles the pipeline configuration from viper,
// falling back to the same defaults the command flags declare.
func effectiveConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Scan: types.ScanConfig{
			Root: viper.GetString("scan.root"),
		},
		Conversion: types.ConversionConfig{
			Backend: types.ConverterBackend(viper.GetString("conversion.backend")),
		},
		Recognition: types.RecognitionConfig{
			Command: viper.GetString("recognition.command"),
			Args:    viper.GetStringSlice("recognition.args"),
		},
		Render: types.RenderConfig{
			Roots:   viper.GetStringSlice("render.roots"),
			DPI:     viper.GetInt("render.dpi"),
			Quality: viper.GetInt("render.quality"),
		},
		Preview: types.PreviewConfig{
			Port:     viper.GetInt("preview.port"),
			Offline:  viper.GetBool("preview.offline"),
			CacheDir: viper.GetString("preview.cache_dir"),
		},
		Ledger: types.LedgerConfig{
			Path: viper.GetString("ledger.path"),
		},
	}

	if cfg.Scan.Root == "" {
		cfg.Scan.Root = "scores"
	}
	if cfg.Conversion.Backend == "" {
		cfg.Conversion.Backend = types.BackendAuto
	}
	if cfg.Recognition.Command == "" {
		cfg.Recognition.Command = recognize.DefaultCommand
	}
	if len(cfg.Render.Roots) == 0 {
		cfg.Render.Roots = []string{"."}
	}
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = 300
	}
	if cfg.Render.Quality == 0 {
		cfg.Render.Quality = 92
	}
	return cfg
}

func init() {
	rootCmd.AddCommand(configCmd)
}
