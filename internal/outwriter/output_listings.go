package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteChannelList outputs a channel listing, dispatching based on the output format configured.
func WriteChannelList(channels []schema.ChannelInfo, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, channels)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"channel", "name", "type", "units", "rate", "subchannels", "samples"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, c := range channels {
					rec := []string{c.Channel, c.Name, c.Type, c.Units, fmtFloat(c.Rate), strconv.Itoa(c.SubChannels), fmt.Sprintf(intFmt, c.Samples)}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChannelListText(w, channels, cfg, intFmt)
		}, "Wrote table")
	}
}

func writeChannelListText(w io.Writer, channels []schema.ChannelInfo, cfg *contract.Config, intFmt string) error {
	nameWidth := GetMaxNameWidth(cfg)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Channel", "Name", "Type", "Units", "Rate", "Subchannels", "Samples"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(channels))
	for _, c := range channels {
		data = append(data, []string{
			c.Channel,
			contract.TruncateText(c.Name, nameWidth),
			typeLabel(c.Type, cfg.UseColors),
			c.Units,
			FormatRate(c.Rate),
			strconv.Itoa(c.SubChannels),
			fmt.Sprintf(intFmt, c.Samples),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d channel(s)\n", len(channels))
	return err
}

// WriteTypeList outputs registered measurement types, dispatching based on the output format configured.
func WriteTypeList(types []schema.TypeInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, types)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"abbrev", "name"}, func(cw *csv.Writer) error {
				for _, t := range types {
					if err := cw.Write([]string{t.Abbrev, t.Name}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTypeListText(w, types, cfg)
		}, "Wrote table")
	}
}

func writeTypeListText(w io.Writer, types []schema.TypeInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Abbrev", "Name"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(types))
	for _, t := range types {
		data = append(data, []string{t.Abbrev, typeLabel(t.Name, cfg.UseColors)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d measurement type(s)\n", len(types))
	return err
}

// WriteParsedTime outputs a resolved time expression, dispatching based on the output format configured.
func WriteParsedTime(result schema.ParsedTime, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"input", "ref", "micros"}, func(cw *csv.Writer) error {
				return cw.Write([]string{result.Input, refString(result), optionalInt(result.Micros)})
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParsedTimeText(w, result)
		}, "Wrote text")
	}
}

func writeParsedTimeText(w io.Writer, result schema.ParsedTime) error {
	if result.Micros == nil {
		_, err := fmt.Fprintf(w, "%q is unbounded\n", result.Input)
		return err
	}
	if _, err := fmt.Fprintf(w, "Input:    %s\n", result.Input); err != nil {
		return err
	}
	if result.Ref != nil {
		if _, err := fmt.Fprintf(w, "Ref:      %s\n", refString(result)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Micros:   %s\n", FormatTimestamp(*result.Micros)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Duration: %s\n", FormatDuration(*result.Micros))
	return err
}

// refString renders the reference time of result, empty when absent.
func refString(result schema.ParsedTime) string {
	if result.Ref == nil {
		return ""
	}
	return result.Ref.Format("2006-01-02T15:04:05.999999999Z07:00")
}
