// Package main starts the miroview streaming client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// flags holds command-line overrides on top of the environment config.
type flags struct {
	deviceID      string
	mode          string
	quality       string
	serverURL     string
	apiBaseURL    string
	metricsAddr   string
	overlayPreset string
	debug         bool
}

// main is the entrypoint for the miroview client.
func main() {
	var f flags

	root := &cobra.Command{
		Use:           "miroview",
		Short:         "Mirror a remote device screen with element overlays",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	root.Flags().StringVarP(&f.deviceID, "device", "d", "", "Device identifier to mirror (required)")
	root.Flags().StringVarP(&f.mode, "mode", "m", "", "Transport mode: json, binary-mjpeg, or h264")
	root.Flags().StringVarP(&f.quality, "quality", "q", "", "Stream quality tier")
	root.Flags().StringVar(&f.serverURL, "server", "", "Stream server base URL")
	root.Flags().StringVar(&f.apiBaseURL, "api", "", "Device-control API base URL")
	root.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Prometheus listen address, empty to disable")
	root.Flags().StringVar(&f.overlayPreset, "overlay-preset", "", "Overlay filter preset YAML path")
	root.Flags().BoolVar(&f.debug, "debug", false, "Enable verbose debug logging")
	_ = root.MarkFlagRequired("device")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
