// Package tuya is a client for the legacy Smart Life cloud endpoints:
// log in with app credentials, discover lights, and drive them with
// JSON commands.
package tuya

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"tuya-lights/internal/domain"
)

const defaultBaseURL = "https://px1.tuyaus.com/homeassistant"

// Client holds one authenticated session. The token is fixed at
// construction; when it expires the service starts refusing commands
// and a fresh Login is the way back in.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRegion selects the service cluster closest to the account's
// country. Unknown regions fall back to the US cluster.
func WithRegion(region string) Option {
	return func(c *Client) {
		switch strings.ToLower(region) {
		case "eu":
			c.baseURL = "https://px1.tuyaeu.com/homeassistant"
		case "cn":
			c.baseURL = "https://px1.tuyacn.com/homeassistant"
		default:
			c.baseURL = defaultBaseURL
		}
	}
}

func newClient(opts []Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login signs in with Smart Life app credentials and returns a client
// bound to the issued session. The refresh token that comes with the
// grant is kept but never used; expired sessions need a new Login.
func Login(ctx context.Context, username, password string, opts ...Option) (*Client, error) {
	c := newClient(opts)

	form := url.Values{}
	form.Set("userName", username)
	form.Set("password", password)
	form.Set("countryCode", "1")
	form.Set("bizType", "smart_life")
	form.Set("from", "tuya")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/auth.do",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	// The auth endpoint answers in ISO-8859-1 no matter what the request
	// asks for.
	body, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	tokens, err := decodeLogin(body)
	if err != nil {
		return nil, err
	}

	c.tokens = tokens
	return c, nil
}

// FromToken builds a client around a previously saved access token,
// skipping the login round trip.
func FromToken(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("tuya: empty access token")
	}
	c := newClient(opts)
	c.tokens = session{AccessToken: token}
	return c, nil
}

// AccessToken returns the session token, for callers that persist it
// between runs.
func (c *Client) AccessToken() string {
	return c.tokens.AccessToken
}

// Discover asks the service for every device on the account and returns
// the ones that are lights, in the order the service listed them.
func (c *Client) Discover(ctx context.Context) ([]domain.Light, error) {
	body, err := c.send(ctx, domain.Discover{})
	if err != nil {
		return nil, err
	}
	return decodeDiscovery(body)
}

func (c *Client) SetState(ctx context.Context, light domain.Light, on bool) error {
	return c.command(ctx, domain.TurnOnOff{DeviceID: light.ID, On: on})
}

// SetBrightness takes a 0-255 level and converts it to the percentage
// scale the service uses.
func (c *Client) SetBrightness(ctx context.Context, light domain.Light, level uint8) error {
	return c.command(ctx, domain.SetBrightness{DeviceID: light.ID, Percent: vendorPercent(level)})
}

func (c *Client) SetColor(ctx context.Context, light domain.Light, color domain.HSBColor) error {
	return c.command(ctx, domain.SetColor{DeviceID: light.ID, Color: color})
}

// SetColorTemperature takes a temperature in Kelvin. The service covers
// 2700K to 6500K; higher inputs are clamped to 6500K, lower ones are
// forwarded uncorrected.
func (c *Client) SetColorTemperature(ctx context.Context, light domain.Light, kelvin int) error {
	return c.command(ctx, domain.SetColorTemperature{DeviceID: light.ID, Value: vendorColorTemp(kelvin)})
}

// QueryState fetches the current state the service has on record for
// the light.
func (c *Client) QueryState(ctx context.Context, light domain.Light) (domain.LightState, error) {
	body, err := c.send(ctx, domain.QueryDevice{DeviceID: light.ID})
	if err != nil {
		return domain.LightState{}, err
	}
	return decodeState(body)
}

func (c *Client) command(ctx context.Context, cmd domain.Command) error {
	body, err := c.send(ctx, cmd)
	if err != nil {
		return err
	}
	return decodeAck(body)
}

func (c *Client) send(ctx context.Context, cmd domain.Command) ([]byte, error) {
	body, err := json.Marshal(encode(cmd, c.tokens.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/skill", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// The service reports failures in the body, not the status line, so
	// the body is parsed whatever the status was.
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return respBody, nil
}
