package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleTables() []*schema.ChannelTable {
	return []*schema.ChannelTable{
		{
			Dataset:      "drop-test",
			Path:         "data/drop-test.yaml",
			SessionStart: time.Date(2021, 6, 11, 16, 59, 9, 0, time.UTC),
			Filter:       "acc light",
			Rows: []schema.ChannelRow{
				{
					Channel: "8.0", ChannelID: 8, SubChannel: 0,
					Name: "X (100g)", Type: "Acceleration", Units: "g", Rate: 5000,
					Start: ptr(int64(0)), End: ptr(int64(2_000_000)), Duration: ptr(int64(2_000_000)),
					Samples: 10001, MeasuredRate: ptr(5000.0),
				},
				{
					Channel: "76.0", ChannelID: 76, SubChannel: 0,
					Name: "Lux", Type: "Light", Units: "lux", Rate: 4,
					Samples: 0,
				},
			},
		},
	}
}

func textConfig() *contract.Config {
	return &contract.Config{
		Output:       schema.TextOut,
		Precision:    2,
		Width:        200,
		Workers:      4,
		CacheBackend: schema.SQLiteBackend,
	}
}

func TestWriteChannelTablesText(t *testing.T) {
	cfg := textConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeChannelTablesText(&buf, sampleTables(), cfg, fmtFloat, intFmt, 1500*time.Millisecond)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "drop-test (data/drop-test.yaml) @ 2021-06-11T16:59:09Z | types: acc light | window: all")
	assert.Contains(t, out, "X (100g)")
	assert.Contains(t, out, "5000.00 Hz")
	assert.Contains(t, out, "00:02.0000")
	assert.Contains(t, out, "10001")
	assert.Contains(t, out, "Showing 2 rows from 1 dataset(s) (total samples: 10001)")
	assert.Contains(t, out, "Query completed in 1.5s with 4 workers. Cache backend: sqlite")
}

func TestWriteChannelTablesTextTimestamps(t *testing.T) {
	cfg := textConfig()
	cfg.Timestamps = true
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	tables := sampleTables()
	tables[0].Start = ptr(int64(0))
	tables[0].End = ptr(int64(2_000_000))

	var buf bytes.Buffer
	require.NoError(t, writeChannelTablesText(&buf, tables, cfg, fmtFloat, intFmt, time.Second))
	assert.Contains(t, buf.String(), "window: 0 µs .. 2000000 µs")
	assert.Contains(t, buf.String(), "2000000 µs")
}

func TestWriteChannelTablesTruncatesNames(t *testing.T) {
	cfg := textConfig()
	cfg.Width = 80
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	tables := sampleTables()
	tables[0].Rows[0].Name = strings.Repeat("n", 60)

	var buf bytes.Buffer
	require.NoError(t, writeChannelTablesText(&buf, tables, cfg, fmtFloat, intFmt, time.Second))
	assert.Contains(t, buf.String(), strings.Repeat("n", minNameWidth-3)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("n", minNameWidth))
}

func TestWriteCSVResultsForTables(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForTables(&buf, sampleTables(), fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"dataset", "channel", "channel_id", "subchannel", "name", "type", "units", "rate",
		"start_us", "end_us", "duration_us", "samples", "measured_rate",
	}, records[0])
	assert.Equal(t, []string{
		"drop-test", "8.0", "8", "0", "X (100g)", "Acceleration", "g", "5000.00",
		"0", "2000000", "2000000", "10001", "5000.00",
	}, records[1])
	assert.Equal(t, []string{
		"drop-test", "76.0", "76", "0", "Lux", "Light", "lux", "4.00",
		"", "", "", "0", "",
	}, records[2])
}

func TestWriteChannelTablesFormats(t *testing.T) {
	tests := []struct {
		name   string
		output schema.OutputMode
		check  func(t *testing.T, content []byte)
	}{
		{
			name:   "json",
			output: schema.JSONOut,
			check: func(t *testing.T, content []byte) {
				var tables []schema.ChannelTable
				require.NoError(t, json.Unmarshal(content, &tables))
				require.Len(t, tables, 1)
				assert.Equal(t, "drop-test", tables[0].Dataset)
				assert.Nil(t, tables[0].Rows[1].Start)
			},
		},
		{
			name:   "csv",
			output: schema.CSVOut,
			check: func(t *testing.T, content []byte) {
				assert.True(t, strings.HasPrefix(string(content), "dataset,channel,"))
			},
		},
		{
			name:   "parquet",
			output: schema.ParquetOut,
			check: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte("PAR1")))
			},
		},
		{
			name:   "text",
			output: schema.TextOut,
			check: func(t *testing.T, content []byte) {
				assert.Contains(t, string(content), "Showing 2 rows")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := textConfig()
			cfg.Output = tt.output
			cfg.OutputFile = filepath.Join(t.TempDir(), "out")

			require.NoError(t, WriteChannelTables(sampleTables(), cfg, time.Second))
			content, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			tt.check(t, content)
		})
	}
}

func TestWriteChannelList(t *testing.T) {
	channels := []schema.ChannelInfo{
		{Channel: "36.*", Name: "Pressure/Temperature", Type: "Pressure, Temperature", Units: "Pa, °C", Rate: 10, SubChannels: 2, Samples: 42},
		{Channel: "76.0", Name: "Lux", Type: "Light", Units: "lux", Rate: 4, SubChannels: 1, Samples: 5},
	}
	cfg := textConfig()

	var buf bytes.Buffer
	require.NoError(t, writeChannelListText(&buf, channels, cfg, "%d"))
	assert.Contains(t, buf.String(), "Pressure/Temperature")
	assert.Contains(t, buf.String(), "10.00 Hz")
	assert.Contains(t, buf.String(), "Showing 2 channel(s)")

	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "channels.csv")
	require.NoError(t, WriteChannelList(channels, cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"channel", "name", "type", "units", "rate", "subchannels", "samples"}, records[0])
	assert.Equal(t, []string{"36.*", "Pressure/Temperature", "Pressure, Temperature", "Pa, °C", "10.00", "2", "42"}, records[1])

	cfg.Output = schema.ParquetOut
	assert.ErrorIs(t, WriteChannelList(channels, cfg), errParquetUnsupported)
}

func TestWriteTypeList(t *testing.T) {
	types := []schema.TypeInfo{
		{Name: "Acceleration", Abbrev: "acc"},
		{Name: "Temperature", Abbrev: "temp"},
	}
	cfg := textConfig()

	var buf bytes.Buffer
	require.NoError(t, writeTypeListText(&buf, types, cfg))
	assert.Contains(t, buf.String(), "Acceleration")
	assert.Contains(t, buf.String(), "temp")
	assert.Contains(t, buf.String(), "2 measurement type(s)")

	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "types.json")
	require.NoError(t, WriteTypeList(types, cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded []schema.TypeInfo
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, types, decoded)

	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "types.csv")
	require.NoError(t, WriteTypeList(types, cfg))
	content, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "abbrev,name\nacc,Acceleration\ntemp,Temperature\n", string(content))

	cfg.Output = schema.ParquetOut
	assert.ErrorIs(t, WriteTypeList(types, cfg), errParquetUnsupported)
}

func TestWriteParsedTime(t *testing.T) {
	ref := time.Date(2021, 6, 11, 16, 59, 9, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, writeParsedTimeText(&buf, schema.ParsedTime{Input: "3:22:11", Micros: ptr(int64(12_131_000_000))}))
	assert.Equal(t, "Input:    3:22:11\nMicros:   12131000000 µs\nDuration: 03:22:11.0000\n", buf.String())

	buf.Reset()
	require.NoError(t, writeParsedTimeText(&buf, schema.ParsedTime{Input: ""}))
	assert.Equal(t, "\"\" is unbounded\n", buf.String())

	buf.Reset()
	require.NoError(t, writeParsedTimeText(&buf, schema.ParsedTime{Input: "2021-06-11T16:59:10Z", Ref: &ref, Micros: ptr(int64(1_000_000))}))
	assert.Contains(t, buf.String(), "Ref:      2021-06-11T16:59:09Z")

	cfg := textConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "time.csv")
	require.NoError(t, WriteParsedTime(schema.ParsedTime{Input: "1.5", Micros: ptr(int64(1_500_000))}, cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "input,ref,micros\n1.5,,1500000\n", string(content))

	cfg.Output = schema.ParquetOut
	assert.ErrorIs(t, WriteParsedTime(schema.ParsedTime{}, cfg), errParquetUnsupported)
}

func TestWriteSampleFrame(t *testing.T) {
	at := time.Date(2021, 6, 11, 16, 59, 9, 250_000_000, time.UTC)
	tests := []struct {
		name     string
		frame    *schema.SampleFrame
		expected string
	}{
		{
			name: "seconds",
			frame: &schema.SampleFrame{
				Channel: "36.*", TimeMode: schema.SecondsTime, Columns: []string{"Pressure", "Temperature"},
				Rows: []schema.SampleFrameRow{{Seconds: ptr(0.5), Values: []float64{101325, 23.25}}},
			},
			expected: "seconds,Pressure,Temperature\n0.5,101325,23.25\n",
		},
		{
			name: "timedelta",
			frame: &schema.SampleFrame{
				Channel: "76.0", TimeMode: schema.TimedeltaTime, Columns: []string{"Lux"},
				Rows: []schema.SampleFrameRow{{Offset: ptr(int64(750_000)), Values: []float64{12}}},
			},
			expected: "offset_us,Lux\n750000,12\n",
		},
		{
			name: "datetime",
			frame: &schema.SampleFrame{
				Channel: "76.0", TimeMode: schema.DatetimeTime, Columns: []string{"Lux"},
				Rows: []schema.SampleFrameRow{{Datetime: &at, Values: []float64{12}}},
			},
			expected: "datetime,Lux\n2021-06-11T16:59:09.25Z,12\n",
		},
		{
			name: "missing values",
			frame: &schema.SampleFrame{
				Channel: "76.*", TimeMode: schema.SecondsTime, Columns: []string{"Lux", "UV"},
				Rows: []schema.SampleFrameRow{
					{Seconds: ptr(1.0), Values: []float64{14, math.NaN()}},
					{Seconds: ptr(1.5), Values: []float64{math.NaN(), 3}},
				},
			},
			expected: "seconds,Lux,UV\n1,14,\n1.5,,3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeCSVResultsForSamples(&buf, tt.frame))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteSampleFrameFormats(t *testing.T) {
	frame := &schema.SampleFrame{
		Channel: "76.0", Name: "Lux", TimeMode: schema.SecondsTime, Columns: []string{"Lux"},
		Rows: []schema.SampleFrameRow{
			{Seconds: ptr(0.0), Values: []float64{10}},
			{Seconds: ptr(0.25), Values: []float64{12}},
		},
	}

	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeSampleFrameText(&buf, frame, fmtFloat))
	assert.Contains(t, buf.String(), "76.0 Lux")
	assert.Contains(t, buf.String(), "12.0")
	assert.Contains(t, buf.String(), "Showing 2 sample(s)")

	merged := &schema.SampleFrame{
		Channel: "76.*", Name: "Light Sensor", TimeMode: schema.SecondsTime, Columns: []string{"Lux", "UV"},
		Rows: []schema.SampleFrameRow{{Seconds: ptr(1.5), Values: []float64{math.NaN(), 3}}},
	}
	buf.Reset()
	require.NoError(t, writeSampleFrameText(&buf, merged, fmtFloat))
	assert.Contains(t, buf.String(), "3.0")
	assert.NotContains(t, buf.String(), "NaN")

	cfg := textConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "samples.parquet")
	require.NoError(t, WriteSampleFrame(frame, cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("PAR1")))

	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "samples.json")
	require.NoError(t, WriteSampleFrame(frame, cfg))
	content, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded schema.SampleFrame
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, *frame, decoded)
}

func TestGetMaxNameWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		timestamps bool
		expected   int
	}{
		{"narrow clamps to minimum", 80, false, minNameWidth},
		{"wide clamps to maximum", 300, false, maxNameWidth},
		{"in between", 125, false, 25},
		{"timestamps take room", 125, true, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Timestamps: tt.timestamps}
			assert.Equal(t, tt.expected, GetMaxNameWidth(cfg))
		})
	}
}
