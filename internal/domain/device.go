package domain

type DeviceKind string

const (
	KindLight   DeviceKind = "light"
	KindSwitch  DeviceKind = "switch"
	KindScene   DeviceKind = "scene"
	KindCover   DeviceKind = "cover"
	KindClimate DeviceKind = "climate"
	KindFan     DeviceKind = "fan"
	KindLock    DeviceKind = "lock"
	KindUnknown DeviceKind = "unknown"
)

// Light is a handle to a lamp known to the cloud service. The ID is
// assigned by the service; it is never made up locally. Two Lights name
// the same lamp exactly when their IDs match; names are display labels
// and may repeat.
type Light struct {
	ID   string
	Name string
}

// LightState mirrors the data block the service reports for a lamp.
// Brightness and State arrive as strings from the service and are kept
// that way.
type LightState struct {
	Brightness string
	ColorMode  string
	ColorTemp  int
	Online     bool
	State      string
}

// On reports whether the lamp is switched on. Depending on firmware the
// service encodes the power state as "true" or "1".
func (s LightState) On() bool {
	return s.State == "true" || s.State == "1"
}
