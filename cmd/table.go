package cmd

import (
	"github.com/huangsam/idescope/core"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/spf13/cobra"
)

// tableCmd summarizes the channels of one or more recordings.
var tableCmd = &cobra.Command{
	Use:   "table <dataset>...",
	Short: "Show when each selected channel has data inside a time window.",
	Long: `Build a channel table for every dataset: one row per selected subchannel
(or per channel with --whole) holding the first and last sample inside the window,
the sample count, and the measured sample rate.

Datasets are .yaml, .yml or .json manifests. A directory argument expands to every
manifest directly inside it. Tables keep the order of the arguments.

Times accept seconds ("1.5"), clock form ("[[D:]H:]M:S"), Go durations ("250ms"),
or RFC 3339 timestamps, which are measured from each dataset's session start.

Examples:
  # Every channel over the whole recording
  idescope table drop-test.yaml

  # Accelerometers and temperature, excluding light sensors
  idescope table drop-test.yaml --types "acc temp -light"

  # A window two seconds long starting one minute in
  idescope table recordings/ --start 1:00 --end 1:02

  # Export to CSV for tracking
  idescope table drop-test.yaml --output csv --output-file channels.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChannelTable(rootCtx, cfg, newRuntime()); err != nil {
			contract.LogFatal("Cannot build channel table", err)
		}
	},
}

// channelsCmd lists the channels of a recording without reading sample windows.
var channelsCmd = &cobra.Command{
	Use:   "channels <dataset>",
	Short: "List the channels of a recording that match a type filter.",
	Long: `List channels and subchannels whose measurement type matches --types.

A channel matches when any of its subchannels does. Use --whole to list channels
instead of subchannels.

Examples:
  # Everything in the recording
  idescope channels drop-test.yaml

  # Only pressure sensors, as whole channels
  idescope channels drop-test.yaml --types pres --whole`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChannels(rootCtx, cfg, newRuntime()); err != nil {
			contract.LogFatal("Cannot list channels", err)
		}
	},
}

// typesCmd lists the registered measurement types.
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the known measurement types and their abbreviations.",
	Long: `List the measurement types that --types understands, in registration order.

Custom types declared under custom-types in the config file are included.
A --types filter narrows the listing.

Examples:
  idescope types
  idescope types --types "* -acc" --output json`,
	Args:    cobra.NoArgs,
	PreRunE: noDatasetSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTypes(rootCtx, cfg, newRuntime()); err != nil {
			contract.LogFatal("Cannot list measurement types", err)
		}
	},
}

// timeCmd resolves a time expression.
var timeCmd = &cobra.Command{
	Use:   "time <expr>",
	Short: "Resolve a time expression to microseconds.",
	Long: `Show how a --start or --end value is interpreted.

Examples:
  idescope time 3:22:11
  idescope time 2021-06-11T17:00:09Z --ref 2021-06-11T16:59:09Z`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noDatasetSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		ref, _ := cmd.Flags().GetString("ref")
		if err := core.ExecuteParseTime(rootCtx, cfg, newRuntime(), args[0], ref); err != nil {
			contract.LogFatal("Cannot parse time", err)
		}
	},
}

// samplesCmd exports the samples of one source.
var samplesCmd = &cobra.Command{
	Use:   "samples <dataset>",
	Short: "Export the samples of one channel or subchannel.",
	Long: `Export samples of --channel inside the window as a frame with one value column
per subchannel.

The time column is seconds from the session start, a microsecond offset
(timedelta), or wall-clock datetime.

Examples:
  idescope samples drop-test.yaml --channel 8.0 --start 1 --end 1.01
  idescope samples drop-test.yaml --channel 36.* --time-mode datetime --output parquet --output-file pt.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSamples(rootCtx, cfg, newRuntime()); err != nil {
			contract.LogFatal("Cannot export samples", err)
		}
	},
}
