package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/idescope/core/measure"
)

// Color variables for console output.
var (
	MotionColor      = color.New(color.FgRed, color.Bold) // acceleration, rotation and similar kinematics
	EnvironmentColor = color.New(color.FgCyan)            // pressure, temperature, humidity, light
	ElectricalColor  = color.New(color.FgYellow)          // voltage, current, power, energy
	PositionColor    = color.New(color.FgMagenta)         // location, orientation, direction, altitude
	OtherColor       = color.New(color.FgHiBlack)         // everything else, including untyped
	WarnColor        = color.New(color.FgYellow, color.Bold)
	FatalColor       = color.New(color.FgRed, color.Bold)
)

// typeFamilies groups type abbreviations by color.
var typeFamilies = map[string]*color.Color{
	"acc": MotionColor, "gyro": MotionColor, "rot": MotionColor, "spd": MotionColor, "force": MotionColor, "strain": MotionColor,
	"pres": EnvironmentColor, "temp": EnvironmentColor, "rh": EnvironmentColor, "light": EnvironmentColor, "mic": EnvironmentColor, "spl": EnvironmentColor,
	"volt": ElectricalColor, "amp": ElectricalColor, "power": ElectricalColor, "nrg": ElectricalColor,
	"gps": PositionColor, "imu": PositionColor, "dir": PositionColor, "alt": PositionColor, "mag": PositionColor, "dist": PositionColor,
}

// GetTypeColor returns the console color for a measurement type.
func GetTypeColor(t *measure.Type) *color.Color {
	if t == nil {
		return OtherColor
	}
	if c, ok := typeFamilies[t.Abbrev()]; ok {
		return c
	}
	return OtherColor
}

// GetColorLabel returns label colored by the family of t.
func GetColorLabel(t *measure.Type, label string) string {
	return GetTypeColor(t).Sprint(label)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", FatalColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// LogInfo logs a status line to stderr so stdout stays machine-readable.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".idescope_cache.db"
	}
	return filepath.Join(homeDir, ".idescope_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for query history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".idescope_history.db"
	}
	return filepath.Join(homeDir, ".idescope_history.db")
}

// TruncateText truncates s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
