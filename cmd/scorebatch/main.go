// Package main is the entry point for the scorebatch CLI, a batch
// driver for optical music recognition: it discovers score images under
// a directory, normalizes HEIC/HEIF inputs to JPEG through a platform
// converter, and runs an external recognition tool on each file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkostiv/scorebatch/internal/toolpaths"
)

// version is set at build time via ldflags.
var version = "dev"

// toolOverrides holds binary path overrides loaded from the tools
// directory at startup.
var toolOverrides toolpaths.Overrides

// rootCmd is the base command for the scorebatch CLI.
var rootCmd = &cobra.Command{
	Use:   "scorebatch",
	Short: "Batch driver for optical music recognition",
	Long: `scorebatch prepares and processes directories of sheet-music images.
It converts HEIC/HEIF photos to JPEG with a platform image utility,
invokes an external recognition tool (homr by default) on each image,
rasterizes PDF and SVG scores into JPEG pages, and previews recognized
MusicXML output in the browser.

Each stage is a subcommand: process, convert, render, preview, and
history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("tools-dir")
		if dir == "" {
			dir = viper.GetString("tools_dir")
		}
		if dir == "" {
			dir = filepath.Join(".scorebatch", "tools")
		}

		overrides, err := toolpaths.Load(dir)
		if err != nil {
			return err
		}
		toolOverrides = overrides
		if len(overrides) > 0 {
			tools := make([]string, 0, len(overrides))
			for name := range overrides {
				tools = append(tools, name)
			}
			sort.Strings(tools)
			fmt.Fprintf(os.Stderr, "Loaded tool overrides: %v\n", tools)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scorebatch.yaml or ~/.config/scorebatch/config.yaml)")
	rootCmd.PersistentFlags().String("tools-dir", "", "directory of tool path overrides (default: .scorebatch/tools)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scorebatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scorebatch"))
		}
	}

	viper.SetEnvPrefix("SCOREBATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
