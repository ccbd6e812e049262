package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/version"
)

type healthResponse struct {
	Status    string `json:"status"`
	Device    string `json:"device"`
	Address   string `json:"address"`
	Model     string `json:"model,omitempty"`
	Connected bool   `json:"connected"`
	State     string `json:"state"`
	Clients   int    `json:"event_clients"`
	Version   string `json:"version"`
}

type boolRequest struct {
	On *bool `json:"on"`
}

type volumeRequest struct {
	Volume *int `json:"volume"`
}

type inputRequest struct {
	Type string `json:"type"`
	Port int    `json:"port"`
}

type sceneRequest struct {
	Value string `json:"value"`
}

type sendRequest struct {
	Type              string `json:"type"`
	Command           string `json:"command"`
	Parameters        string `json:"parameters"`
	IgnoreDeviceError bool   `json:"ignore_device_error"`
}

type sendResponse struct {
	Type       string `json:"type"`
	Command    string `json:"command"`
	Parameters string `json:"parameters"`
}

type networkResponse struct {
	Interface string `json:"interface"`
	MAC       string `json:"mac"`
	Broadcast string `json:"broadcast"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := b.dev.State()
	resp := healthResponse{
		Status:    "ok",
		Device:    b.cfg.Name,
		Address:   b.cfg.Address,
		Model:     b.cfg.Model,
		Connected: state == device.Connected,
		State:     state.String(),
		Clients:   b.hub.ClientCount(),
		Version:   version.Version,
	}
	if !resp.Connected {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetState returns the cached snapshot, reading it from the display
// when none is cached or ?refresh=1 is given.
func (b *Bridge) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "" {
		if snap := b.Snapshot(); snap != nil {
			writeJSON(w, http.StatusOK, snap)
			return
		}
	}
	snap, err := b.refresh(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (b *Bridge) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	netif := r.URL.Query().Get("netif")
	if netif == "" {
		netif = control.DefaultInterface
	}
	mac, err := b.ctl.MACAddress(r.Context(), netif)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	broadcast, err := b.ctl.BroadcastAddress(r.Context(), netif)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, networkResponse{Interface: netif, MAC: mac, Broadcast: broadcast})
}

func (b *Bridge) handleSetPower(w http.ResponseWriter, r *http.Request) {
	var req boolRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.On == nil {
		writeBadRequest(w, `"on" is required`)
		return
	}
	on, err := b.ctl.SetPower(r.Context(), *req.On)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": on})
}

func (b *Bridge) handleTogglePower(w http.ResponseWriter, r *http.Request) {
	on, err := b.ctl.TogglePower(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": on})
}

func (b *Bridge) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Volume == nil {
		writeBadRequest(w, `"volume" is required`)
		return
	}
	v, err := b.ctl.SetVolume(r.Context(), *req.Volume)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"volume": v})
}

func (b *Bridge) handleVolumeStep(sign int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		step := 1
		if s := r.URL.Query().Get("step"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				writeBadRequest(w, fmt.Sprintf("invalid step %q", s))
				return
			}
			step = n
		}

		var (
			v   int
			err error
		)
		if sign > 0 {
			v, err = b.ctl.VolumeUp(r.Context(), step)
		} else {
			v, err = b.ctl.VolumeDown(r.Context(), step)
		}
		if err != nil {
			writeDeviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"volume": v})
	}
}

func (b *Bridge) handleSetMute(w http.ResponseWriter, r *http.Request) {
	var req boolRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.On == nil {
		writeBadRequest(w, `"on" is required`)
		return
	}
	if err := b.ctl.SetAudioMute(r.Context(), *req.On); err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": *req.On})
}

func (b *Bridge) handleSetPictureMute(w http.ResponseWriter, r *http.Request) {
	var req boolRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.On == nil {
		writeBadRequest(w, `"on" is required`)
		return
	}
	if err := b.ctl.SetPictureMute(r.Context(), *req.On); err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": *req.On})
}

func (b *Bridge) handleTogglePictureMute(w http.ResponseWriter, r *http.Request) {
	on, err := b.ctl.TogglePictureMute(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": on})
}

func (b *Bridge) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := b.ctl.SetInput(r.Context(), req.Type, req.Port)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	if in.IsNone() {
		writeError(w, http.StatusConflict, ErrCodeUnavailable,
			fmt.Sprintf("input %s %d is not available", req.Type, req.Port))
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (b *Bridge) handleSetScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	scene, err := b.ctl.SetScene(r.Context(), req.Value)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	if scene == "" {
		writeError(w, http.StatusConflict, ErrCodeUnavailable,
			fmt.Sprintf("scene %q is not available on the current input", req.Value))
		return
	}
	b.setScene(scene)
	writeJSON(w, http.StatusOK, map[string]string{"value": scene})
}

func (b *Bridge) handleListIRCC(w http.ResponseWriter, _ *http.Request) {
	table, err := control.DefaultIRCCTable()
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, table.Codes())
}

func (b *Bridge) handleSendIRCC(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := b.ctl.SendIRCC(r.Context(), name); err != nil {
		writeDeviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSend issues a raw request and returns the answer packet as is.
func (b *Bridge) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	typ, err := protocol.ParseMessageType(req.Type)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	pkt, err := b.ctl.Send(r.Context(), device.Request{
		Type:              typ,
		Command:           req.Command,
		Parameters:        req.Parameters,
		IgnoreDeviceError: req.IgnoreDeviceError,
	})
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{
		Type:       pkt.Type.String(),
		Command:    pkt.Command,
		Parameters: pkt.Parameters,
	})
}

// handleEvents upgrades to the event stream. The first message is the
// current snapshot when one is known.
func (b *Bridge) handleEvents(w http.ResponseWriter, r *http.Request) {
	var initial []byte
	if snap := b.Snapshot(); snap != nil {
		data, err := encodeEvent(EventState, snap)
		if err != nil {
			logging.Warn("Failed to encode initial state", zap.Error(err))
		}
		initial = data
	}
	b.hub.serve(w, r, initial)
}
