package dataset

import "github.com/huangsam/idescope/schema"

// FixtureSessionStart is the session start of the fixture recording.
const FixtureSessionStart = "2021-06-11T16:59:09Z"

// FixtureManifest describes a small recording shaped like a typical logger file:
// two accelerometers, two pressure/temperature sensors, a gyroscope, a light
// sensor and a diagnostics channel whose data cannot be read.
func FixtureManifest() *Manifest {
	return &Manifest{
		Name:         "fixture",
		SessionStart: FixtureSessionStart,
		Channels: []ChannelEntry{
			{
				ID: 8, Name: "Accelerometer (high-g)", Rate: 5000,
				Synthetic: &SyntheticEntry{Duration: "2s", Amplitude: 2, Frequency: 100},
				SubChannels: []SubChannelEntry{
					{Name: "X (100g)", Quantity: "Acceleration", Units: "g"},
					{Name: "Y (100g)", Quantity: "Acceleration", Units: "g"},
					{Name: "Z (100g)", Quantity: "Acceleration", Units: "g"},
				},
			},
			{
				ID: 80, Name: "Accelerometer (DC)", Rate: 400,
				Synthetic: &SyntheticEntry{Duration: "2s", Amplitude: 1, Frequency: 5},
				SubChannels: []SubChannelEntry{
					{Name: "X (40g)", Quantity: "acc", Units: "g"},
					{Name: "Y (40g)", Quantity: "acc", Units: "g"},
					{Name: "Z (40g)", Quantity: "acc", Units: "g"},
				},
			},
			{
				ID: 36, Name: "Pressure/Temperature", Rate: 10,
				Synthetic: &SyntheticEntry{Duration: "1.5s", Offset: "0.5s", Amplitude: 101325},
				SubChannels: []SubChannelEntry{
					{Name: "Pressure", Quantity: "Pressure", Units: "Pa"},
					{Name: "Temperature", Quantity: "Temperature", Units: "°C"},
				},
			},
			{
				ID: 59, Name: "Control Pad P/T", Rate: 10,
				Synthetic: &SyntheticEntry{Duration: "2s", Amplitude: 25},
				SubChannels: []SubChannelEntry{
					{Name: "Control Pad Pressure", Quantity: "Pressure", Units: "Pa"},
					{Name: "Control Pad Temp", Quantity: "Temperature", Units: "°C"},
					{Name: "Relative Humidity", Quantity: "Relative Humidity", Units: "RH%"},
				},
			},
			{
				ID: 47, Name: "Gyroscope", Rate: 200,
				Synthetic: &SyntheticEntry{Duration: "2s", Amplitude: 90, Frequency: 1},
				SubChannels: []SubChannelEntry{
					{Name: "X", Quantity: "Angular Rate", Units: "dps"},
					{Name: "Y", Quantity: "Angular Rate", Units: "dps"},
					{Name: "Z", Quantity: "Angular Rate", Units: "dps"},
				},
			},
			{
				ID: 76, Name: "Light Sensor", Rate: 4,
				SubChannels: []SubChannelEntry{
					{Name: "Lux", Quantity: "Light", Units: "lux", Times: []int64{0, 250_000, 500_000, 750_000, 1_000_000}, Values: []float64{10, 12, 11, 15, 14}},
					{Name: "UV", Quantity: "light", Units: "index", Times: []int64{1_500_000, 1_750_000}, Values: []float64{3, 4}},
				},
			},
			{
				ID: 99, Name: "Diagnostics", Unavailable: true,
				SubChannels: []SubChannelEntry{
					{Name: "Battery", Quantity: "Voltage", Units: "V"},
				},
			},
		},
	}
}

// LongFixtureManifest describes a twelve second recording whose first samples
// are offset from whole seconds, so window edges fall between samples.
func LongFixtureManifest() *Manifest {
	return &Manifest{
		Name:         "long-fixture",
		SessionStart: FixtureSessionStart,
		Channels: []ChannelEntry{
			{
				ID: 8, Name: "Accelerometer", Rate: 1000,
				Synthetic: &SyntheticEntry{Duration: "12s", Offset: "13.4ms", Amplitude: 2, Frequency: 50},
				SubChannels: []SubChannelEntry{
					{Name: "X", Quantity: "Acceleration", Units: "g"},
					{Name: "Y", Quantity: "Acceleration", Units: "g"},
					{Name: "Z", Quantity: "Acceleration", Units: "g"},
				},
			},
			{
				ID: 36, Name: "Pressure/Temperature", Rate: 10,
				Synthetic: &SyntheticEntry{Duration: "12s", Offset: "0.05s", Amplitude: 101325},
				SubChannels: []SubChannelEntry{
					{Name: "Pressure", Quantity: "Pressure", Units: "Pa"},
					{Name: "Temperature", Quantity: "Temperature", Units: "°C"},
				},
			},
			{
				ID: 47, Name: "Gyroscope", Rate: 200,
				Synthetic: &SyntheticEntry{Duration: "12s", Offset: "2.5ms", Amplitude: 90, Frequency: 1},
				SubChannels: []SubChannelEntry{
					{Name: "X", Quantity: "Angular Rate", Units: "dps"},
				},
			},
			{
				ID: 76, Name: "Light Sensor", Rate: 4,
				SubChannels: []SubChannelEntry{
					{Name: "Lux", Quantity: "Light", Units: "lux", Synthetic: &SyntheticEntry{Duration: "12s", Offset: "0.1s", Amplitude: 12}},
					{Name: "UV", Quantity: "light", Units: "index", Rate: 2, Synthetic: &SyntheticEntry{Duration: "12s", Offset: "0.3s", Amplitude: 3}},
				},
			},
		},
	}
}

// FixtureYAML is FixtureManifest in its on-disk form, trimmed to what loader
// tests need.
const FixtureYAML = `name: fixture
session_start: "2021-06-11T16:59:09Z"
channels:
  - id: 8
    name: Accelerometer (high-g)
    rate: 5000
    synthetic: {duration: 2s, amplitude: 2, frequency: 100}
    subchannels:
      - {name: X (100g), quantity: Acceleration, units: g}
      - {name: Y (100g), quantity: Acceleration, units: g}
      - {name: Z (100g), quantity: Acceleration, units: g}
  - id: 36
    name: Pressure/Temperature
    rate: 10
    synthetic: {duration: "0:01.5", offset: 500000, amplitude: 101325}
    subchannels:
      - {name: Pressure, quantity: Pressure, units: Pa}
      - {name: Temperature, quantity: temp, units: "°C"}
  - id: 76
    name: Light Sensor
    rate: 4
    subchannels:
      - name: Lux
        quantity: Light
        units: lux
        times: [0, 250000, 500000]
        values: [10, 12, 11]
  - id: 99
    name: Diagnostics
    unavailable: true
    subchannels:
      - {name: Battery, quantity: Voltage, units: V}
  - id: 120
    name: Mystery
    times: [0, 10, 20]
    subchannels:
      - {name: Thing, quantity: Flux Capacitance, units: GW}
`

// Fixture builds the fixture recording with the default registry.
func Fixture() *schema.Dataset {
	ds, err := NewLoader(nil).Build(FixtureManifest())
	if err != nil {
		panic(err)
	}
	return ds
}

// LongFixture builds the long fixture recording with the default registry.
func LongFixture() *schema.Dataset {
	ds, err := NewLoader(nil).Build(LongFixtureManifest())
	if err != nil {
		panic(err)
	}
	return ds
}
