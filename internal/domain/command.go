package domain

// Command is one request that can be sent to the cloud service. The set
// of implementations is closed: each variant carries exactly the data
// its wire form needs, already in the units the service expects.
type Command interface {
	isCommand()
}

type Discover struct{}

type TurnOnOff struct {
	DeviceID string
	On       bool
}

// SetBrightness carries a brightness percentage (0-100).
type SetBrightness struct {
	DeviceID string
	Percent  int
}

type SetColor struct {
	DeviceID string
	Color    HSBColor
}

// SetColorTemperature carries a value on the service's own temperature
// scale, not Kelvin.
type SetColorTemperature struct {
	DeviceID string
	Value    int
}

type QueryDevice struct {
	DeviceID string
}

func (Discover) isCommand()            {}
func (TurnOnOff) isCommand()           {}
func (SetBrightness) isCommand()       {}
func (SetColor) isCommand()            {}
func (SetColorTemperature) isCommand() {}
func (QueryDevice) isCommand()         {}

// HSBColor is a hue/saturation/brightness triple. Values are forwarded
// to the service untouched.
type HSBColor struct {
	Hue        int
	Saturation int
	Brightness int
}
