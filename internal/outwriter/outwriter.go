// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTables prints channel tables using the configured output format.
func (ow *OutWriter) WriteTables(tables []*schema.ChannelTable, cfg *contract.Config, duration time.Duration) error {
	return WriteChannelTables(tables, cfg, duration)
}

// WriteChannels prints a channel listing using the configured output format.
func (ow *OutWriter) WriteChannels(channels []schema.ChannelInfo, cfg *contract.Config) error {
	return WriteChannelList(channels, cfg)
}

// WriteTypes prints the measurement type listing using the configured output format.
func (ow *OutWriter) WriteTypes(types []schema.TypeInfo, cfg *contract.Config) error {
	return WriteTypeList(types, cfg)
}

// WriteSamples prints an exported sample frame using the configured output format.
func (ow *OutWriter) WriteSamples(frame *schema.SampleFrame, cfg *contract.Config) error {
	return WriteSampleFrame(frame, cfg)
}

// WriteTime prints a resolved time expression using the configured output format.
func (ow *OutWriter) WriteTime(result schema.ParsedTime, cfg *contract.Config) error {
	return WriteParsedTime(result, cfg)
}

// Name column bounds for text tables.
const (
	minNameWidth = 12
	maxNameWidth = 40
)

// GetMaxNameWidth calculates the maximum width for channel names in table output
// based on terminal width and table configuration.
func GetMaxNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width // Absolute override from flag/env
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Channel + Type + Units + Rate + Start + End + Duration + Samples + Measured
	baseWidth := 100
	if cfg.Timestamps {
		baseWidth += 10 // Raw microseconds are wider than durations
	}

	available := termWidth - baseWidth
	return max(minNameWidth, min(available, maxNameWidth))
}
