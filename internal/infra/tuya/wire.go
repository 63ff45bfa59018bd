package tuya

import "tuya-lights/internal/domain"

type header struct {
	PayloadVersion int    `json:"payloadVersion"`
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
}

type request struct {
	Header  header         `json:"header"`
	Payload map[string]any `json:"payload"`
}

// encode builds the wire envelope for a command. Every request carries
// the access token; device commands add devId plus their own value or
// color field.
func encode(cmd domain.Command, accessToken string) request {
	namespace := "control"
	var name string

	payload := map[string]any{"accessToken": accessToken}

	switch c := cmd.(type) {
	case domain.Discover:
		namespace, name = "discovery", "Discovery"
	case domain.TurnOnOff:
		name = "turnOnOff"
		payload["devId"] = c.DeviceID
		if c.On {
			payload["value"] = "1"
		} else {
			payload["value"] = "0"
		}
	case domain.SetBrightness:
		name = "brightnessSet"
		payload["devId"] = c.DeviceID
		payload["value"] = c.Percent
	case domain.SetColor:
		name = "colorSet"
		payload["devId"] = c.DeviceID
		payload["color"] = map[string]any{
			"hue":        c.Color.Hue,
			"saturation": c.Color.Saturation,
			"brightness": c.Color.Brightness,
		}
	case domain.SetColorTemperature:
		name = "colorTemperatureSet"
		payload["devId"] = c.DeviceID
		payload["value"] = c.Value
	case domain.QueryDevice:
		namespace, name = "query", "QueryDevice"
		payload["devId"] = c.DeviceID
	}

	return request{
		Header:  header{PayloadVersion: 1, Namespace: namespace, Name: name},
		Payload: payload,
	}
}
