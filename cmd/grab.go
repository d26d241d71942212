package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smazurov/camgrab/internal/camera"
	"github.com/smazurov/camgrab/internal/capture"
	"github.com/smazurov/camgrab/internal/devices"
	"github.com/smazurov/camgrab/internal/logging"
	"github.com/spf13/cobra"
)

// CreateGrabCmd creates the grab command.
func CreateGrabCmd() *cobra.Command {
	var outputFile string
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "grab [device-id]",
		Short: "Capture one frame to a file",
		Long: `Acquires a camera, reads a single grayscale frame, and writes it to a file. ` +
			`The output format follows the file extension (.png or .pgm). ` +
			`When no device ID is given the first detected device is used.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})
			logger := logging.GetLogger("grab")

			deviceID := ""
			if len(args) > 0 {
				deviceID = args[0]
			} else {
				detector := devices.NewDeviceDetector()
				found, err := detector.FindDevices()
				if err != nil || len(found) == 0 {
					fmt.Fprintln(os.Stderr, "No video capture devices found")
					os.Exit(1)
				}
				deviceID = found[0].DeviceID
				logger.Info("Using first detected device", "device_id", deviceID)
			}

			mgr := camera.NewManager(logger)
			result, err := capture.GrabFrame(mgr, capture.Options{
				DeviceID:    deviceID,
				WaitTimeout: timeout,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
				os.Exit(1)
			}

			f, err := os.Create(outputFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()

			switch filepath.Ext(outputFile) {
			case ".pgm":
				err = result.EncodePGM(f)
			default:
				err = result.EncodePNG(f)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to encode frame: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Wrote %dx%d frame to %s\n", result.Width, result.Height, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "frame.png", "Output file (.png or .pgm)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Per-attempt frame wait timeout (default 5s)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}
