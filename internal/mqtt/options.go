package mqtt

import (
	"fmt"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/muurk/bravia/internal/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	maxReconnectInterval     = 30 * time.Second
	maxQoS                   = 2
)

// clientID returns the configured id or "bravia-<device>-<uuid prefix>".
func clientID(cfg *config.MQTT, device string) string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}
	return fmt.Sprintf("bravia-%s-%s", device, uuid.NewString()[:8])
}

func buildClientOptions(cfg *config.MQTT, topics Topics, id string) (*pahomqtt.ClientOptions, error) {
	u, err := url.Parse(cfg.Broker)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBrokerURL, cfg.Broker)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBrokerURL, u.Scheme)
	}
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(id)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	// Set commands wait on the display; run handlers concurrently.
	opts.SetOrderMatters(false)

	// The broker marks the display offline if the bridge dies.
	opts.SetWill(topics.Status(), StatusOffline, 1, true)
	return opts, nil
}
