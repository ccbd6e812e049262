package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/history"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/mqtt"
	"github.com/muurk/bravia/internal/protocol"
)

const (
	mqttQueueSize      = 64
	mqttCommandTimeout = 15 * time.Second
)

type stateMessage struct {
	field string
	value string
}

// connectSinks connects MQTT and InfluxDB when configured. A sink that
// cannot connect is logged and left disabled.
func (b *Bridge) connectSinks(ctx context.Context) {
	if b.cfg.MQTT != nil {
		client, err := mqtt.Connect(b.cfg.MQTT, b.cfg.Name)
		if err != nil {
			logging.Warn("MQTT disabled", zap.Error(err))
		} else {
			queue := make(chan stateMessage, mqttQueueSize)
			b.sinkMu.Lock()
			b.mqtt = client
			b.mqttQueue = queue
			b.sinkMu.Unlock()

			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.mqttPublisher(client, queue)
			}()

			if err := client.Subscribe(client.Topics().SetWildcard(), b.handleMQTTCommand); err != nil {
				logging.Warn("MQTT command subscription failed", zap.Error(err))
			}
		}
	}

	if b.cfg.InfluxDB != nil {
		w, err := history.Connect(ctx, b.cfg.InfluxDB, b.cfg.Name)
		if err != nil {
			logging.Warn("InfluxDB history disabled", zap.Error(err))
		} else {
			b.sinkMu.Lock()
			b.history = w
			b.sinkMu.Unlock()
		}
	}
}

func (b *Bridge) closeSinks() {
	b.sinkMu.Lock()
	client, queue, w := b.mqtt, b.mqttQueue, b.history
	b.mqtt, b.mqttQueue, b.history = nil, nil, nil
	b.sinkMu.Unlock()

	if queue != nil {
		close(queue)
	}
	if client != nil {
		_ = client.Close()
	}
	if w != nil {
		_ = w.Close()
	}
}

// mqttPublisher drains queue so that the display's read loop never waits
// on the broker.
func (b *Bridge) mqttPublisher(client *mqtt.Client, queue <-chan stateMessage) {
	for msg := range queue {
		if err := client.PublishState(msg.field, msg.value); err != nil {
			logging.Debug("MQTT publish failed", zap.String("field", msg.field), zap.Error(err))
		}
	}
}

func (b *Bridge) publishState(field, value string) {
	b.sinkMu.RLock()
	defer b.sinkMu.RUnlock()
	if b.mqttQueue == nil {
		return
	}
	select {
	case b.mqttQueue <- stateMessage{field: field, value: value}:
	default:
		logging.Warn("MQTT queue full, dropping state update", zap.String("field", field))
	}
}

func (b *Bridge) publishSnapshot(s *control.Snapshot) {
	for _, m := range snapshotMessages(s) {
		b.publishState(m.field, m.value)
	}
}

func (b *Bridge) publishNotification(n protocol.Notification) {
	if m, ok := notificationMessage(n); ok {
		b.publishState(m.field, m.value)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func snapshotMessages(s *control.Snapshot) []stateMessage {
	msgs := []stateMessage{{mqtt.FieldPower, onOff(s.Power)}}
	if s.Volume != nil {
		msgs = append(msgs, stateMessage{mqtt.FieldVolume, strconv.Itoa(*s.Volume)})
	}
	if s.AudioMute != nil {
		msgs = append(msgs, stateMessage{mqtt.FieldMute, onOff(*s.AudioMute)})
	}
	if s.PictureMute != nil {
		msgs = append(msgs, stateMessage{mqtt.FieldPictureMute, onOff(*s.PictureMute)})
	}
	if s.Input != nil {
		msgs = append(msgs, stateMessage{mqtt.FieldInput, s.Input.String()})
	}
	if s.Scene != nil {
		msgs = append(msgs, stateMessage{mqtt.FieldScene, *s.Scene})
	}
	return msgs
}

func notificationMessage(n protocol.Notification) (stateMessage, bool) {
	switch n.Command {
	case protocol.CommandPower:
		return stateMessage{mqtt.FieldPower, onOff(n.Status)}, true
	case protocol.CommandVolume:
		return stateMessage{mqtt.FieldVolume, strconv.Itoa(n.Volume)}, true
	case protocol.CommandAudioMute:
		return stateMessage{mqtt.FieldMute, onOff(n.Status)}, true
	case protocol.CommandPictureMute:
		return stateMessage{mqtt.FieldPictureMute, onOff(n.Status)}, true
	case protocol.CommandInput:
		return stateMessage{mqtt.FieldInput, n.Input.String()}, true
	}
	return stateMessage{}, false
}

func (b *Bridge) handleMQTTCommand(topic string, payload []byte) error {
	b.sinkMu.RLock()
	client := b.mqtt
	b.sinkMu.RUnlock()
	if client == nil {
		return nil
	}

	command, err := client.Topics().ParseSet(topic)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), mqttCommandTimeout)
	defer cancel()
	return b.applyCommand(ctx, command, strings.TrimSpace(string(payload)))
}

var errBadValue = errors.New("invalid value")

// applyCommand executes a text command such as ("volume", "up") or
// ("input", "hdmi 2").
func (b *Bridge) applyCommand(ctx context.Context, command, value string) error {
	lower := strings.ToLower(value)
	switch command {
	case mqtt.FieldPower:
		switch lower {
		case "toggle":
			_, err := b.ctl.TogglePower(ctx)
			return err
		case "on", "off":
			_, err := b.ctl.SetPower(ctx, lower == "on")
			return err
		}
	case mqtt.FieldVolume:
		switch lower {
		case "up":
			_, err := b.ctl.VolumeUp(ctx, 1)
			return err
		case "down":
			_, err := b.ctl.VolumeDown(ctx, 1)
			return err
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			break
		}
		_, err = b.ctl.SetVolume(ctx, v)
		return err
	case mqtt.FieldMute:
		if lower == "on" || lower == "off" {
			return b.ctl.SetAudioMute(ctx, lower == "on")
		}
	case mqtt.FieldPictureMute:
		switch lower {
		case "toggle":
			_, err := b.ctl.TogglePictureMute(ctx)
			return err
		case "on", "off":
			return b.ctl.SetPictureMute(ctx, lower == "on")
		}
	case mqtt.FieldInput:
		typ, port, ok := splitInput(value)
		if !ok {
			break
		}
		_, err := b.ctl.SetInput(ctx, typ, port)
		return err
	case mqtt.FieldScene:
		scene, err := b.ctl.SetScene(ctx, value)
		if err == nil && scene != "" {
			b.setScene(scene)
		}
		return err
	case "ircc":
		return b.ctl.SendIRCC(ctx, value)
	}
	return fmt.Errorf("%w %q for %s", errBadValue, value, command)
}

// splitInput parses "hdmi 2", "hdmi:2" or "hdmi2".
func splitInput(s string) (string, int, bool) {
	s = strings.TrimSpace(s)
	if typ, port, ok := strings.Cut(s, ":"); ok {
		p, err := strconv.Atoi(strings.TrimSpace(port))
		return strings.TrimSpace(typ), p, err == nil
	}
	if fields := strings.Fields(s); len(fields) == 2 {
		p, err := strconv.Atoi(fields[1])
		return fields[0], p, err == nil
	}
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return "", 0, false
	}
	p, err := strconv.Atoi(s[i:])
	return s[:i], p, err == nil
}
