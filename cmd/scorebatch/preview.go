package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkostiv/scorebatch/internal/preview"
	"github.com/mkostiv/scorebatch/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview <score>",
	Short: "Preview a MusicXML score in the browser",
	Long: `Preview serves a recognized MusicXML file (.musicxml, .xml, or .mxl)
on localhost and renders it with OpenSheetMusicDisplay. With --offline
the OSMD bundle is downloaded once into a local cache and served from
there instead of the CDN. The server runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score := args[0]

		cfg := types.PreviewConfig{
			Port:     intSetting(cmd, "port", "preview.port"),
			Offline:  boolSetting(cmd, "offline", "preview.offline"),
			CacheDir: stringSetting(cmd, "cache-dir", "preview.cache_dir"),
		}

		fetchCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		dir, err := preview.Prepare(fetchCtx, http.DefaultClient, cfg, score)
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return preview.Serve(ctx, dir, cfg.Port, func(url string) {
			fmt.Printf("Serving %s at %s\n", score, url)
			fmt.Println("Press Ctrl+C to stop.")
		})
	},
}

func init() {
	previewCmd.Flags().Int("port", 0, "HTTP port (0 picks a free port)")
	previewCmd.Flags().Bool("offline", false, "serve a cached OSMD bundle instead of the CDN")
	previewCmd.Flags().String("cache-dir", "", "OSMD bundle cache directory (default: ~/.cache/scorebatch)")

	rootCmd.AddCommand(previewCmd)
}
