package tuya_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"tuya-lights/internal/domain"
	"tuya-lights/internal/infra/tuya"
)

// skillRequest mirrors the envelope the client sends, for inspection on
// the test server side.
type skillRequest struct {
	Header struct {
		PayloadVersion int    `json:"payloadVersion"`
		Namespace      string `json:"namespace"`
		Name           string `json:"name"`
	} `json:"header"`
	Payload map[string]any `json:"payload"`
}

// vendorServer fakes the two cloud endpoints and records every skill
// request it receives.
type vendorServer struct {
	mu       sync.Mutex
	requests []skillRequest

	loginBody []byte
	skillBody []byte
}

func (v *vendorServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth.do":
			w.Write(v.loginBody)
		case "/skill":
			var req skillRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			v.mu.Lock()
			v.requests = append(v.requests, req)
			v.mu.Unlock()
			w.Write(v.skillBody)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
}

func (v *vendorServer) lastRequest(t *testing.T) skillRequest {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.requests) == 0 {
		t.Fatal("no request reached the server")
	}
	return v.requests[len(v.requests)-1]
}

func TestLogin(t *testing.T) {
	var form map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth.do" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type: got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		form = map[string]string{}
		for key := range r.PostForm {
			form[key] = r.PostForm.Get(key)
		}
		w.Write([]byte(`{"access_token":"tok123","refresh_token":"ref456","token_type":"bearer","expires_in":864000}`))
	}))
	defer server.Close()

	client, err := tuya.Login(context.Background(), "user@example.com", "hunter2", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if client.AccessToken() != "tok123" {
		t.Errorf("access token: got %s, want tok123", client.AccessToken())
	}

	want := map[string]string{
		"userName":    "user@example.com",
		"password":    "hunter2",
		"countryCode": "1",
		"bizType":     "smart_life",
		"from":        "tuya",
	}
	for key, value := range want {
		if form[key] != value {
			t.Errorf("form field %s: got %q, want %q", key, form[key], value)
		}
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The auth endpoint answers in ISO-8859-1: the 0xF1 byte below is
		// the eñe of "contraseña".
		w.Write([]byte("{\"responseStatus\":\"error\",\"errorMsg\":\"contrase\xf1a incorrecta\"}"))
	}))
	defer server.Close()

	_, err := tuya.Login(context.Background(), "user@example.com", "wrong", tuya.WithBaseURL(server.URL))

	var apiErr *tuya.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error: got %v, want an APIError", err)
	}
	if apiErr.Message != "contraseña incorrecta" {
		t.Errorf("message: got %q, want the decoded text", apiErr.Message)
	}
}

func TestLogin_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := tuya.Login(context.Background(), "user@example.com", "hunter2", tuya.WithBaseURL(server.URL))

	var transportErr *tuya.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error: got %v, want a TransportError", err)
	}
}

func TestLogin_GarbageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>502 bad gateway</html>`))
	}))
	defer server.Close()

	_, err := tuya.Login(context.Background(), "user@example.com", "hunter2", tuya.WithBaseURL(server.URL))

	var decodeErr *tuya.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error: got %v, want a DecodeError", err)
	}
}

func TestFromToken_EmptyToken(t *testing.T) {
	if _, err := tuya.FromToken(""); err == nil {
		t.Fatal("FromToken with an empty token should fail")
	}
}

func TestDiscover(t *testing.T) {
	vendor := &vendorServer{
		skillBody: []byte(`{
			"header": {"code": "SUCCESS"},
			"payload": {"devices": [
				{"dev_type": "light", "id": "lamp-1", "name": "Luz Living", "data": {"state": "true", "online": true}},
				{"dev_type": "switch", "id": "plug-1", "name": "Enchufe Cocina", "data": {"state": "false", "online": true}},
				{"dev_type": "light", "id": "lamp-2", "name": "Luz Cocina", "data": {"state": "false", "online": true}}
			]}
		}`),
	}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	lights, err := client.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	if len(lights) != 2 {
		t.Fatalf("lights count: got %d, want 2", len(lights))
	}
	if lights[0].Name != "Luz Living" || lights[1].Name != "Luz Cocina" {
		t.Errorf("lights: got %v", lights)
	}

	req := vendor.lastRequest(t)
	if req.Header.Namespace != "discovery" || req.Header.Name != "Discovery" {
		t.Errorf("header: got %s/%s, want discovery/Discovery", req.Header.Namespace, req.Header.Name)
	}
	if req.Payload["accessToken"] != "tok123" {
		t.Errorf("accessToken: got %v, want tok123", req.Payload["accessToken"])
	}
}

func TestSetBrightness(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"SUCCESS"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	light := domain.Light{ID: "dev1", Name: "Lamp"}
	if err := client.SetBrightness(context.Background(), light, 128); err != nil {
		t.Fatalf("SetBrightness error: %v", err)
	}

	req := vendor.lastRequest(t)
	if req.Header.Namespace != "control" || req.Header.Name != "brightnessSet" {
		t.Errorf("header: got %s/%s, want control/brightnessSet", req.Header.Namespace, req.Header.Name)
	}
	if req.Payload["devId"] != "dev1" {
		t.Errorf("devId: got %v, want dev1", req.Payload["devId"])
	}
	// 128 of 255 is 50 percent on the service's scale.
	if req.Payload["value"] != float64(50) {
		t.Errorf("value: got %v, want 50", req.Payload["value"])
	}
}

func TestSetState(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"SUCCESS"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	light := domain.Light{ID: "dev1", Name: "Lamp"}

	if err := client.SetState(context.Background(), light, true); err != nil {
		t.Fatalf("SetState(on) error: %v", err)
	}
	if req := vendor.lastRequest(t); req.Payload["value"] != "1" {
		t.Errorf("on value: got %v, want the string \"1\"", req.Payload["value"])
	}

	if err := client.SetState(context.Background(), light, false); err != nil {
		t.Fatalf("SetState(off) error: %v", err)
	}
	if req := vendor.lastRequest(t); req.Payload["value"] != "0" {
		t.Errorf("off value: got %v, want the string \"0\"", req.Payload["value"])
	}
}

func TestSetColorTemperature_ClampsHighKelvin(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"SUCCESS"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	light := domain.Light{ID: "dev1", Name: "Lamp"}
	if err := client.SetColorTemperature(context.Background(), light, 8000); err != nil {
		t.Fatalf("SetColorTemperature error: %v", err)
	}

	req := vendor.lastRequest(t)
	if req.Header.Name != "colorTemperatureSet" {
		t.Errorf("name: got %s, want colorTemperatureSet", req.Header.Name)
	}
	if req.Payload["value"] != float64(10000) {
		t.Errorf("value: got %v, want 10000", req.Payload["value"])
	}
}

func TestSetColor(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"SUCCESS"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	light := domain.Light{ID: "dev1", Name: "Lamp"}
	color := domain.HSBColor{Hue: 120, Saturation: 100, Brightness: 80}
	if err := client.SetColor(context.Background(), light, color); err != nil {
		t.Fatalf("SetColor error: %v", err)
	}

	req := vendor.lastRequest(t)
	sent, ok := req.Payload["color"].(map[string]any)
	if !ok {
		t.Fatalf("color payload: got %T, want an object", req.Payload["color"])
	}
	if sent["hue"] != float64(120) || sent["saturation"] != float64(100) || sent["brightness"] != float64(80) {
		t.Errorf("color: got %v", sent)
	}
}

func TestCommand_ServiceFailure(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"TargetOffline"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	err = client.SetState(context.Background(), domain.Light{ID: "dev1"}, true)

	var apiErr *tuya.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error: got %v, want an APIError", err)
	}
	if apiErr.Message != "TargetOffline" {
		t.Errorf("message: got %s, want TargetOffline", apiErr.Message)
	}
}

func TestQueryState(t *testing.T) {
	vendor := &vendorServer{
		skillBody: []byte(`{
			"header": {"code": "SUCCESS"},
			"payload": {"data": {"state": "true", "online": true, "brightness": "75", "color_mode": "white", "color_temp": 4500}}
		}`),
	}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	state, err := client.QueryState(context.Background(), domain.Light{ID: "dev1", Name: "Lamp"})
	if err != nil {
		t.Fatalf("QueryState error: %v", err)
	}

	if !state.On() {
		t.Error("state should report on")
	}
	if state.Brightness != "75" {
		t.Errorf("brightness: got %s, want 75", state.Brightness)
	}

	req := vendor.lastRequest(t)
	if req.Header.Namespace != "query" || req.Header.Name != "QueryDevice" {
		t.Errorf("header: got %s/%s, want query/QueryDevice", req.Header.Namespace, req.Header.Name)
	}
	if req.Payload["devId"] != "dev1" {
		t.Errorf("devId: got %v, want dev1", req.Payload["devId"])
	}
}

func TestClient_ConcurrentCommands(t *testing.T) {
	vendor := &vendorServer{skillBody: []byte(`{"header":{"code":"SUCCESS"},"payload":{}}`)}
	server := httptest.NewServer(vendor.handler())
	defer server.Close()

	client, err := tuya.FromToken("tok123", tuya.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	light := domain.Light{ID: "dev1", Name: "Lamp"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			if err := client.SetState(context.Background(), light, on); err != nil {
				t.Errorf("SetState error: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	vendor.mu.Lock()
	defer vendor.mu.Unlock()
	if len(vendor.requests) != 8 {
		t.Errorf("requests: got %d, want 8", len(vendor.requests))
	}
}
