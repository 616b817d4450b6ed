//go:build integration

// Package integration contains integration tests for idescope.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTableVerification builds a channel table and checks every row against an
// independent sample export of the same source and window.
func TestTableVerification(t *testing.T) {
	window := []string{"--start", "0.5", "--end", "1:01.5"}
	args := append([]string{"table", exampleRecording, "--output", "json", "--cache-backend", "none"}, window...)
	out, err := runIdescope(t, args...)
	require.NoError(t, err)

	var tables []schema.ChannelTable
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 1)
	require.NotEmpty(t, tables[0].Rows)

	for _, row := range tables[0].Rows {
		t.Run(row.Channel, func(t *testing.T) {
			args := append([]string{"samples", exampleRecording, "--channel", row.Channel, "--time-mode", "timedelta", "--output", "csv", "--cache-backend", "none"}, window...)
			out, err := runIdescope(t, args...)
			require.NoError(t, err)

			records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
			require.NoError(t, err)
			exported := records[1:] // header

			assert.Equal(t, row.Samples, len(exported), "sample count mismatch for %s", row.Channel)
			if row.Samples == 0 {
				assert.Nil(t, row.Start)
				return
			}
			require.NotNil(t, row.Start)
			require.NotNil(t, row.End)
			assert.Equal(t, exported[0][0], jsonInt(*row.Start))
			assert.Equal(t, exported[len(exported)-1][0], jsonInt(*row.End))
		})
	}
}

// TestChannelsAndTypes checks that filtered listings agree with each other.
func TestChannelsAndTypes(t *testing.T) {
	out, err := runIdescope(t, "types", "--types", "pres rh", "--output", "csv", "--cache-backend", "none")
	require.NoError(t, err)
	assert.Equal(t, "abbrev,name\nrh,Relative Humidity\npres,Pressure\n", out)

	out, err = runIdescope(t, "channels", exampleRecording, "--types", "pres -rh", "--whole", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)
	var channels []schema.ChannelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &channels))
	require.Len(t, channels, 2)
	assert.Equal(t, "36.*", channels[0].Channel)
	assert.Equal(t, "59.*", channels[1].Channel)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
