package measure

// standardTypes are the physical quantities known to the recorders.
var standardTypes = []struct{ name, abbrev string }{
	{"Acceleration", "acc"},
	{"Angular Rate", "gyro"},
	{"Audio", "mic"},
	{"Altitude", "alt"},
	{"Direction", "dir"},
	{"Frequency", "freq"},
	{"Generic/Unspecified", "adc"},
	{"Relative Humidity", "rh"},
	{"Light", "light"},
	{"Location", "gps"},
	{"Magnetic Field", "mag"},
	{"Orientation", "imu"},
	{"Pressure", "pres"},
	{"Rotation", "rot"},
	{"Speed", "spd"},
	{"Temperature", "temp"},
	{"Time", "time"},
	{"Voltage", "volt"},
	{"Current", "amp"},
	{"Force", "force"},
	{"Strain", "strain"},
	{"Distance", "dist"},
	{"Energy", "nrg"},
	{"Mass", "mass"},
	{"Power", "power"},
	{"Radiation", "rad"},
	{"Sound Pressure", "spl"},
	{"Unknown", "unk"},
}

// NewStandardRegistry returns a registry preloaded with the standard quantities.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, st := range standardTypes {
		r.Get(st.name, st.abbrev)
	}
	return r
}

// Default is the registry used by the package-level helpers and the CLI.
var Default = NewStandardRegistry()

// Standard types registered in Default.
var (
	Acceleration  = Default.Get("Acceleration", "acc")
	AngularRate   = Default.Get("Angular Rate", "gyro")
	Audio         = Default.Get("Audio", "mic")
	Altitude      = Default.Get("Altitude", "alt")
	Direction     = Default.Get("Direction", "dir")
	Frequency     = Default.Get("Frequency", "freq")
	Generic       = Default.Get("Generic/Unspecified", "adc")
	Humidity      = Default.Get("Relative Humidity", "rh")
	Light         = Default.Get("Light", "light")
	Location      = Default.Get("Location", "gps")
	MagneticField = Default.Get("Magnetic Field", "mag")
	Orientation   = Default.Get("Orientation", "imu")
	Pressure      = Default.Get("Pressure", "pres")
	Rotation      = Default.Get("Rotation", "rot")
	Speed         = Default.Get("Speed", "spd")
	Temperature   = Default.Get("Temperature", "temp")
	Time          = Default.Get("Time", "time")
	Voltage       = Default.Get("Voltage", "volt")
	Current       = Default.Get("Current", "amp")
	Force         = Default.Get("Force", "force")
	Strain        = Default.Get("Strain", "strain")
	Distance      = Default.Get("Distance", "dist")
	Energy        = Default.Get("Energy", "nrg")
	Mass          = Default.Get("Mass", "mass")
	Power         = Default.Get("Power", "power")
	Radiation     = Default.Get("Radiation", "rad")
	SoundPressure = Default.Get("Sound Pressure", "spl")
	UnknownType   = Default.Get("Unknown", "unk")
)
