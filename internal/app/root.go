// Package app implements the trace-analyzer command line.
package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/timeutil"
	"github.com/mdevolde/trace-analyzer/internal/version"
)

// NewRootCmd builds the root command. A nil fsys or clock selects the OS
// filesystem and the real clock.
func NewRootCmd(fsys fsutil.FileSystem, clock timeutil.Clock) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "trace-analyzer",
		Short: "Hour-of-day activity of known devices in packet captures",
		Long: `trace-analyzer reads packet captures (pcap or pcapng), matches the Ethernet
source and destination addresses of every frame against a table of known
devices, and charts the hours of the day at which each device was active.

Modes:
  --pcap-file              one capture, one line per device
  --pcap-folder            one capture per day, one line per day for the
                           selected device
  --pcap-folder --median   median hourly activity of the selected device
                           across all captures in the folder

Examples:
  trace-analyzer -d devices.xlsx -p capture.pcap -o activity.png
  trace-analyzer -d devices.csv -P captures/ -s camera -o week.html
  trace-analyzer -d devices.xlsx -P captures/ -s camera --median -o median.png`,
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &Runner{FS: fsys, Clock: clock, Out: cmd.OutOrStdout()}
			return r.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.DeviceFile, "device-file", "d", "", "address table (.xlsx or .csv): device name in column 2, MAC address in column 3")
	flags.StringVarP(&opts.PcapFile, "pcap-file", "p", "", "capture file to analyze")
	flags.StringVarP(&opts.PcapFolder, "pcap-folder", "P", "", "folder of capture files, one per day")
	flags.StringVarP(&opts.OutputFile, "output-file", "o", "", "chart output file (.png, .svg, .pdf or .html)")
	flags.BoolVar(&opts.Median, "median", false, "plot the median hourly activity across the folder")
	flags.IntVarP(&opts.Verbosity, "verbose", "v", 1, "verbosity level (0, 1 or 2)")
	flags.StringArrayVarP(&opts.Selected, "selected-device", "s", nil, "restrict the analysis to this device (repeatable)")
	flags.StringVar(&opts.ConfigFile, "config", "", "analysis configuration JSON file")
	flags.StringVar(&opts.DBPath, "db", "", "sqlite database to record results in")

	cmd.MarkFlagRequired("device-file")
	cmd.MarkFlagRequired("output-file")
	cmd.MarkFlagsMutuallyExclusive("pcap-file", "pcap-folder")
	cmd.MarkFlagsOneRequired("pcap-file", "pcap-folder")
	cmd.MarkFlagsMutuallyExclusive("median", "pcap-file")

	return cmd
}

// Execute runs the command line against the OS.
func Execute() error {
	return NewRootCmd(nil, nil).ExecuteContext(context.Background())
}
