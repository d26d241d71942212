// Package cmd holds the cobra subcommands added to the humacli root.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/camgrab/internal/devices"
	"github.com/smazurov/camgrab/internal/logging"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var showFormats bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List video capture devices",
		Long:  `Enumerates video capture devices and prints their stable IDs, paths, and capabilities.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			detector := devices.NewDeviceDetector()
			found, err := detector.FindDevices()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to enumerate devices: %v\n", err)
				os.Exit(1)
			}

			if len(found) == 0 {
				fmt.Println("No video capture devices found")
				return
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEVICE ID\tPATH\tNAME\tCAPABILITIES")
			for _, dev := range found {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					dev.DeviceID, dev.DevicePath, dev.DeviceName,
					strings.Join(dev.Capabilities, ", "))
			}
			w.Flush()

			if !showFormats {
				return
			}

			for _, dev := range found {
				formats, err := detector.GetDeviceFormats(dev.DevicePath)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to read formats for %s: %v\n", dev.DevicePath, err)
					continue
				}
				fmt.Printf("\n%s:\n", dev.DeviceID)
				for _, f := range formats {
					marker := " "
					if f.Supported {
						marker = "*"
					}
					fmt.Printf("  %s %s (%s)\n", marker, f.FormatName, f.OriginalName)
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&showFormats, "formats", "f", false, "Also list each device's pixel formats (* = readable)")
	return cmd
}
