package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/mqtt"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/simulator"
)

type testBridge struct {
	*Bridge
	sim *simulator.Simulator
	srv *httptest.Server
}

func startBridge(t *testing.T, st simulator.State) *testBridge {
	t.Helper()

	sim := simulator.New(st)
	if err := sim.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { _ = sim.Close() })

	b, err := New(Config{
		Name:     "living-room",
		Address:  "127.0.0.1",
		Metrics:  true,
		MinDelay: 10 * time.Millisecond,
		MaxDelay: 50 * time.Millisecond,
		DeviceOptions: []device.Option{
			device.WithPort(sim.Port()),
			device.WithResponseTimeout(time.Second),
			device.WithCloseGrace(10 * time.Millisecond),
		},
		ControlOptions: []control.Option{control.WithPictureMuteSettle(0)},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	srv := httptest.NewServer(b.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	})

	waitFor(t, "initial snapshot", func() bool {
		return b.Device().State() == device.Connected && b.Snapshot() != nil
	})
	return &testBridge{Bridge: b, sim: sim, srv: srv}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (tb *testBridge) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, tb.srv.URL+path, r)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(bytes.TrimSpace(data)) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode, out
}

func TestHealthAndState(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	status, body := tb.do(t, http.MethodGet, "/api/v1/health", "")
	if status != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", status)
	}
	if body["connected"] != true || body["device"] != "living-room" {
		t.Errorf("GET /health = %v", body)
	}

	status, body = tb.do(t, http.MethodGet, "/api/v1/state?refresh=1", "")
	if status != http.StatusOK {
		t.Fatalf("GET /state status = %d, want 200", status)
	}
	if body["power"] != false {
		t.Errorf("power = %v, want false", body["power"])
	}
	if _, ok := body["volume"]; ok {
		t.Errorf("volume present in standby: %v", body)
	}
}

func TestControlEndpoints(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	tests := []struct {
		method string
		path   string
		body   string
		key    string
		want   any
	}{
		{http.MethodPut, "/api/v1/power", `{"on":true}`, "on", true},
		{http.MethodPut, "/api/v1/volume", `{"volume":30}`, "volume", float64(30)},
		{http.MethodPost, "/api/v1/volume/up?step=5", "", "volume", float64(35)},
		{http.MethodPost, "/api/v1/volume/down", "", "volume", float64(34)},
		{http.MethodPut, "/api/v1/mute", `{"on":true}`, "on", true},
		{http.MethodPut, "/api/v1/picture-mute", `{"on":true}`, "on", true},
		{http.MethodPost, "/api/v1/picture-mute/toggle", "", "on", false},
		{http.MethodPut, "/api/v1/input", `{"type":"hdmi","port":2}`, "port", float64(2)},
		{http.MethodPut, "/api/v1/scene", `{"value":"general"}`, "value", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, body := tb.do(t, tt.method, tt.path, tt.body)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %v)", status, body)
			}
			if body[tt.key] != tt.want {
				t.Errorf("%s = %v, want %v", tt.key, body[tt.key], tt.want)
			}
		})
	}

	st := tb.sim.State()
	if !st.Power || st.Volume != 34 || !st.AudioMute || st.PictureMute || st.Scene != "general" {
		t.Errorf("simulator state = %+v", st)
	}

	waitFor(t, "notifications applied", func() bool {
		s := tb.Snapshot()
		return s.Power && s.Volume != nil && *s.Volume == 34 && s.Input != nil && s.Input.Port == 2
	})
	if s := tb.Snapshot(); s.Scene == nil || *s.Scene != "general" {
		t.Errorf("snapshot scene = %v, want general", s.Scene)
	}
}

func TestErrorResponses(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"device error in standby", http.MethodPut, "/api/v1/volume", `{"volume":10}`, http.StatusBadGateway, ErrCodeDeviceError},
		{"volume out of range", http.MethodPut, "/api/v1/volume", `{"volume":101}`, http.StatusBadRequest, ErrCodeValidation},
		{"missing field", http.MethodPut, "/api/v1/volume", `{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown field", http.MethodPut, "/api/v1/power", `{"power":true}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"bad step", http.MethodPost, "/api/v1/volume/up?step=x", "", http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown scene", http.MethodPut, "/api/v1/scene", `{"value":"vivid"}`, http.StatusBadRequest, ErrCodeValidation},
		{"unknown ircc", http.MethodPost, "/api/v1/ircc/NoSuchKey", "", http.StatusBadRequest, ErrCodeValidation},
		{"bad netif", http.MethodGet, "/api/v1/network?netif=eth-0", "", http.StatusBadRequest, ErrCodeValidation},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := tb.do(t, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", status, tt.wantStatus, body)
			}
			if body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
			}
		})
	}
}

func TestErrorEnvelopeRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", &device.Error{Type: device.ErrTypeTimeout, Message: "no answer", Retryable: true}, true},
		{"device error", &device.Error{Type: device.ErrTypeDevice, Message: "refused"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDeviceError(rec, tt.err)

			var body Error
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
			}
			if body.Retryable != tt.want {
				t.Errorf("retryable = %v, want %v", body.Retryable, tt.want)
			}
			if body.Status != rec.Code {
				t.Errorf("status = %d, response code %d", body.Status, rec.Code)
			}
		})
	}
}

func TestRetryDelay(t *testing.T) {
	b := &Bridge{cfg: Config{MinDelay: time.Second, MaxDelay: 30 * time.Second}}

	refused := &device.Error{Type: device.ErrTypeConnection, Message: "refused", Retryable: true}
	if got := b.retryDelay(2*time.Second, refused); got != 2*time.Second {
		t.Errorf("retryDelay(refused) = %v, want 2s", got)
	}
	dns := device.ClassifyNetworkError(&net.DNSError{Name: "tv.local", Err: "no such host"}, "tv.local")
	if got := b.retryDelay(2*time.Second, dns); got != 30*time.Second {
		t.Errorf("retryDelay(dns) = %v, want 30s", got)
	}
}

// heldDialer holds every dial until release is closed, then dials for real
// regardless of the caller's context.
type heldDialer struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *heldDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	h.once.Do(func() { close(h.entered) })
	<-h.release
	var d net.Dialer
	return d.DialContext(context.Background(), network, address)
}

func TestShutdownDuringConnect(t *testing.T) {
	sim := simulator.New(simulator.DefaultState())
	if err := sim.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { _ = sim.Close() })

	dialer := &heldDialer{entered: make(chan struct{}), release: make(chan struct{})}
	b, err := New(Config{
		Name:     "lounge",
		Address:  "127.0.0.1",
		MinDelay: 10 * time.Millisecond,
		MaxDelay: 50 * time.Millisecond,
		DeviceOptions: []device.Option{
			device.WithPort(sim.Port()),
			device.WithDialer(dialer),
			device.WithCloseGrace(10 * time.Millisecond),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-dialer.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge never dialed")
	}
	cancel()
	// The first Disconnect lands while the dial is still held.
	time.Sleep(50 * time.Millisecond)
	close(dialer.release)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
	}
	if st := b.Device().State(); st != device.Disconnected {
		t.Errorf("State() after shutdown = %v, want disconnected", st)
	}
}

func TestInputNotAvailable(t *testing.T) {
	st := simulator.DefaultState()
	st.Power = true
	tb := startBridge(t, st)

	status, body := tb.do(t, http.MethodPut, "/api/v1/input", `{"type":"hdmi","port":9}`)
	if status != http.StatusConflict || body["code"] != ErrCodeUnavailable {
		t.Errorf("PUT /input hdmi 9 = %d %v, want 409 unavailable", status, body)
	}
}

func TestSendRaw(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	status, body := tb.do(t, http.MethodPost, "/api/v1/send", `{"type":"enquiry","command":"POWR"}`)
	if status != http.StatusOK {
		t.Fatalf("POST /send status = %d, want 200 (body %v)", status, body)
	}
	if body["type"] != "answer" || body["command"] != "POWR" || body["parameters"] != protocol.ParametersOff {
		t.Errorf("POST /send = %v", body)
	}

	status, body = tb.do(t, http.MethodPost, "/api/v1/send",
		`{"type":"E","command":"VOLU","ignore_device_error":true}`)
	if status != http.StatusOK || body["parameters"] != protocol.DeviceErrorParameters {
		t.Errorf("POST /send ignore_device_error = %d %v", status, body)
	}

	status, body = tb.do(t, http.MethodPost, "/api/v1/send", `{"type":"answer","command":"POWR"}`)
	if status != http.StatusBadRequest || body["code"] != ErrCodeValidation {
		t.Errorf("POST /send answer = %d %v, want 400 validation_error", status, body)
	}

	status, _ = tb.do(t, http.MethodPost, "/api/v1/send", `{"type":"x","command":"POWR"}`)
	if status != http.StatusBadRequest {
		t.Errorf("POST /send type x status = %d, want 400", status)
	}
}

func TestNetworkEndpoint(t *testing.T) {
	st := simulator.DefaultState()
	st.Power = true
	tb := startBridge(t, st)

	status, body := tb.do(t, http.MethodGet, "/api/v1/network", "")
	if status != http.StatusOK {
		t.Fatalf("GET /network status = %d (body %v)", status, body)
	}
	if body["mac"] != "01-23-45-67-89-AB" || body["broadcast"] != "192.168.1.255" || body["interface"] != "eth0" {
		t.Errorf("GET /network = %v", body)
	}
}

func TestListIRCC(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	resp, err := http.Get(tb.srv.URL + "/api/v1/ircc")
	if err != nil {
		t.Fatalf("GET /ircc error = %v", err)
	}
	defer resp.Body.Close()

	var codes []control.IRCCCode
	if err := json.NewDecoder(resp.Body).Decode(&codes); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(codes) == 0 {
		t.Error("GET /ircc returned no codes")
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestEventStream(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	url := "ws" + strings.TrimPrefix(tb.srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	first := readEvent(t, conn)
	if first["type"] != "event" || first["event_type"] != EventState {
		t.Fatalf("first message = %v, want state event", first)
	}

	waitFor(t, "client registration", func() bool { return tb.hub.ClientCount() == 1 })
	if got := testutil.ToFloat64(tb.metrics.websocketClients); got != 1 {
		t.Errorf("websocket_clients = %v, want 1", got)
	}

	tb.sim.Update(func(s *simulator.State) { s.Power = true })

	for {
		msg := readEvent(t, conn)
		if msg["event_type"] != EventNotify {
			continue
		}
		payload, _ := msg["payload"].(map[string]any)
		if payload["command"] != protocol.CommandPower || payload["status"] != true {
			t.Errorf("notify payload = %v, want POWR on", payload)
		}
		break
	}
}

func TestHubBroadcastWhileUnregistering(t *testing.T) {
	h := newHub(newMetrics(prometheus.NewRegistry(), func() float64 { return 0 }))

	clients := make([]*wsClient, 50)
	for i := range clients {
		clients[i] = &wsClient{id: fmt.Sprint(i), hub: h, send: make(chan []byte, 1)}
		h.register(clients[i])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(EventNotify, i)
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			h.unregister(c)
		}
	}()
	wg.Wait()

	if n := h.ClientCount(); n != 0 {
		t.Errorf("ClientCount() = %d, want 0", n)
	}
	for _, c := range clients {
		// Drain whatever was buffered; the channel must end closed.
		for range c.send {
		}
	}
}

func TestMetrics(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	tb.do(t, http.MethodGet, "/api/v1/state?refresh=1", "")
	if got := testutil.ToFloat64(tb.metrics.requestsTotal.WithLabelValues(protocol.CommandPower, outcomeOK)); got < 2 {
		t.Errorf("requests_total{POWR,ok} = %v, want >= 2", got)
	}

	tb.do(t, http.MethodPut, "/api/v1/volume", `{"volume":10}`)
	if got := testutil.ToFloat64(tb.metrics.requestsTotal.WithLabelValues(protocol.CommandVolume, "device_error")); got != 1 {
		t.Errorf("requests_total{VOLU,device_error} = %v, want 1", got)
	}

	resp, err := http.Get(tb.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"bravia_connection_state 2", "bravia_requests_total", "go_goroutines"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())

	tb.sim.DropClients()
	waitFor(t, "reconnect", func() bool {
		return testutil.ToFloat64(tb.metrics.reconnectsTotal) >= 1 && tb.Device().State() == device.Connected
	})

	status, _ := tb.do(t, http.MethodGet, "/api/v1/state?refresh=1", "")
	if status != http.StatusOK {
		t.Errorf("GET /state after reconnect status = %d, want 200", status)
	}
}

func TestApplyCommand(t *testing.T) {
	tb := startBridge(t, simulator.DefaultState())
	ctx := context.Background()

	steps := []struct {
		command string
		value   string
	}{
		{mqtt.FieldPower, "ON"},
		{mqtt.FieldVolume, "20"},
		{mqtt.FieldVolume, "up"},
		{mqtt.FieldMute, "on"},
		{mqtt.FieldPictureMute, "toggle"},
		{mqtt.FieldInput, "hdmi:3"},
		{mqtt.FieldScene, "auto24pSync"},
	}
	for _, s := range steps {
		if err := tb.applyCommand(ctx, s.command, s.value); err != nil {
			t.Fatalf("applyCommand(%s, %s) error = %v", s.command, s.value, err)
		}
	}

	st := tb.sim.State()
	want := simulator.State{
		Power:       true,
		Volume:      21,
		AudioMute:   true,
		PictureMute: true,
		Input:       protocol.Input{Type: protocol.InputHDMI, Port: 3},
		Scene:       "auto24pSync",
		MAC:         st.MAC,
		Broadcast:   st.Broadcast,
	}
	if st != want {
		t.Errorf("simulator state = %+v, want %+v", st, want)
	}

	if err := tb.applyCommand(ctx, mqtt.FieldVolume, "loud"); !errors.Is(err, errBadValue) {
		t.Errorf("applyCommand(volume, loud) error = %v, want errBadValue", err)
	}
	if err := tb.applyCommand(ctx, mqtt.FieldPower, "maybe"); !errors.Is(err, errBadValue) {
		t.Errorf("applyCommand(power, maybe) error = %v, want errBadValue", err)
	}
}

func TestSplitInput(t *testing.T) {
	tests := []struct {
		in       string
		wantType string
		wantPort int
		wantOK   bool
	}{
		{"hdmi 2", "hdmi", 2, true},
		{"hdmi:4", "hdmi", 4, true},
		{"HDMI3", "HDMI", 3, true},
		{"component 1", "component", 1, true},
		{"hdmi", "", 0, false},
		{"2", "", 0, false},
		{"hdmi:x", "hdmi", 0, false},
	}
	for _, tt := range tests {
		typ, port, ok := splitInput(tt.in)
		if ok != tt.wantOK || (ok && (typ != tt.wantType || port != tt.wantPort)) {
			t.Errorf("splitInput(%q) = %q, %d, %v, want %q, %d, %v",
				tt.in, typ, port, ok, tt.wantType, tt.wantPort, tt.wantOK)
		}
	}
}

func TestStateMessages(t *testing.T) {
	vol, mute := 12, false
	in := protocol.Input{Type: protocol.InputHDMI, Port: 2}
	msgs := snapshotMessages(&control.Snapshot{Power: true, Volume: &vol, AudioMute: &mute, Input: &in})

	want := []stateMessage{
		{mqtt.FieldPower, "on"},
		{mqtt.FieldVolume, "12"},
		{mqtt.FieldMute, "off"},
		{mqtt.FieldInput, "hdmi 2"},
	}
	if fmt.Sprint(msgs) != fmt.Sprint(want) {
		t.Errorf("snapshotMessages() = %v, want %v", msgs, want)
	}

	if m, ok := notificationMessage(protocol.Notification{Command: protocol.CommandPictureMute, Status: true}); !ok || m != (stateMessage{mqtt.FieldPictureMute, "on"}) {
		t.Errorf("notificationMessage(PMUT) = %v, %v", m, ok)
	}
	if _, ok := notificationMessage(protocol.Notification{Command: protocol.CommandScene}); ok {
		t.Error("notificationMessage(SCEN) ok = true, want false")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{device.NewValidationError("bad"), http.StatusBadRequest, ErrCodeValidation},
		{device.ErrNotConnected, http.StatusServiceUnavailable, ErrCodeNotConnected},
		{device.ErrConnectionLost, http.StatusServiceUnavailable, ErrCodeConnectionLost},
		{device.ErrAlreadyConnecting, http.StatusConflict, ErrCodeAlreadyConnecting},
		{device.ErrTimeout, http.StatusGatewayTimeout, ErrCodeTimeout},
		{device.ErrDevice, http.StatusBadGateway, ErrCodeDeviceError},
		{device.NewUnexpectedResponseError("POWR", "0000000000000009"), http.StatusBadGateway, ErrCodeUnexpectedResponse},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, ErrCodeTimeout},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		if status != tt.wantStatus || code != tt.wantCode {
			t.Errorf("statusFor(%v) = %d, %s, want %d, %s", tt.err, status, code, tt.wantStatus, tt.wantCode)
		}
	}
}

func TestConfigFromRegistry(t *testing.T) {
	b := &config.Bridge{
		Listen:    ":8080",
		Metrics:   true,
		Reconnect: &config.Reconnect{MinDelay: 2 * time.Second, MaxDelay: time.Minute},
		MQTT:      &config.MQTT{},
		InfluxDB:  &config.InfluxDB{URL: "http://influx:8086"},
	}
	cfg := ConfigFromRegistry(b, config.Target{Address: "192.168.1.20", Model: "KD-55X85J"})

	if cfg.Listen != ":8080" || !cfg.Metrics {
		t.Errorf("listen/metrics = %q/%v", cfg.Listen, cfg.Metrics)
	}
	if cfg.MinDelay != 2*time.Second || cfg.MaxDelay != time.Minute {
		t.Errorf("delays = %v/%v", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.MQTT != nil {
		t.Error("MQTT without broker should be disabled")
	}
	if cfg.InfluxDB == nil {
		t.Error("InfluxDB with URL should be enabled")
	}
	if cfg.Name != config.DeviceNameFor("KD-55X85J", "192.168.1.20") {
		t.Errorf("name = %q", cfg.Name)
	}
}
