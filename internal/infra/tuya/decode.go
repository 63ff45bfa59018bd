package tuya

import (
	"encoding/json"
	"fmt"

	"tuya-lights/internal/domain"
)

// session holds the tokens issued at login. Only the access token is
// ever sent back to the service; sessions are not refreshed.
type session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// decodeLogin picks apart the two shapes the auth endpoint produces:
// a token grant, or an error envelope. The access token field doubles
// as the discriminator since the error shape never carries one.
func decodeLogin(body []byte) (session, error) {
	var granted session
	if err := json.Unmarshal(body, &granted); err == nil && granted.AccessToken != "" {
		return granted, nil
	}

	var refused struct {
		ErrorMsg       string `json:"errorMsg"`
		ResponseStatus string `json:"responseStatus"`
	}
	if err := json.Unmarshal(body, &refused); err == nil && refused.ErrorMsg != "" {
		return session{}, &APIError{Message: refused.ErrorMsg}
	}

	return session{}, &DecodeError{Err: fmt.Errorf("login response matches no known shape: %s", preview(body))}
}

func decodeDiscovery(body []byte) ([]domain.Light, error) {
	var resp struct {
		Payload *struct {
			Devices []struct {
				DevType string `json:"dev_type"`
				ID      string `json:"id"`
				Name    string `json:"name"`
			} `json:"devices"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("parsing device list: %w (body: %s)", err, preview(body))}
	}
	if resp.Payload == nil || resp.Payload.Devices == nil {
		return nil, &DecodeError{Err: fmt.Errorf("device list missing from response: %s", preview(body))}
	}

	lights := make([]domain.Light, 0, len(resp.Payload.Devices))
	for _, d := range resp.Payload.Devices {
		if kindFromDevType(d.DevType) != domain.KindLight {
			continue
		}
		if d.ID == "" {
			return nil, &DecodeError{Err: fmt.Errorf("light record without an id: %s", preview(body))}
		}
		lights = append(lights, domain.Light{ID: d.ID, Name: d.Name})
	}
	return lights, nil
}

// decodeAck checks the result code of a control command. Any code other
// than SUCCESS is handed back as a service error, including codes this
// client has never seen.
func decodeAck(body []byte) error {
	var resp struct {
		Header *struct {
			Code string `json:"code"`
		} `json:"header"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return &DecodeError{Err: fmt.Errorf("parsing acknowledgement: %w (body: %s)", err, preview(body))}
	}
	if resp.Header == nil || resp.Header.Code == "" {
		return &DecodeError{Err: fmt.Errorf("acknowledgement without a result code: %s", preview(body))}
	}
	if resp.Header.Code != "SUCCESS" {
		return &APIError{Message: resp.Header.Code}
	}
	return nil
}

func decodeState(body []byte) (domain.LightState, error) {
	var resp struct {
		Header *struct {
			Code string `json:"code"`
		} `json:"header"`
		Payload *struct {
			Data *struct {
				Brightness string `json:"brightness"`
				ColorMode  string `json:"color_mode"`
				ColorTemp  int    `json:"color_temp"`
				Online     bool   `json:"online"`
				State      string `json:"state"`
			} `json:"data"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.LightState{}, &DecodeError{Err: fmt.Errorf("parsing device state: %w (body: %s)", err, preview(body))}
	}
	if resp.Header == nil || resp.Header.Code == "" {
		return domain.LightState{}, &DecodeError{Err: fmt.Errorf("state response without a result code: %s", preview(body))}
	}
	if resp.Header.Code != "SUCCESS" {
		return domain.LightState{}, &APIError{Message: resp.Header.Code}
	}
	if resp.Payload == nil || resp.Payload.Data == nil {
		return domain.LightState{}, &DecodeError{Err: fmt.Errorf("state response without a data block: %s", preview(body))}
	}

	d := resp.Payload.Data
	return domain.LightState{
		Brightness: d.Brightness,
		ColorMode:  d.ColorMode,
		ColorTemp:  d.ColorTemp,
		Online:     d.Online,
		State:      d.State,
	}, nil
}

func kindFromDevType(devType string) domain.DeviceKind {
	switch devType {
	case "light":
		return domain.KindLight
	case "switch":
		return domain.KindSwitch
	case "scene":
		return domain.KindScene
	case "cover":
		return domain.KindCover
	case "climate":
		return domain.KindClimate
	case "fan":
		return domain.KindFan
	case "lock":
		return domain.KindLock
	default:
		return domain.KindUnknown
	}
}
