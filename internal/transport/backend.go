package transport

import (
	"fmt"
	"net/url"

	"github.com/five82/ticontrol/internal/config"
	"github.com/five82/ticontrol/internal/logging"
)

// NewPushChannel builds the push channel selected by cfg.PushBackend. base is
// the device API address the WebSocket backend is derived from.
func NewPushChannel(cfg config.Config, base *url.URL, logger *logging.Logger) (PushChannel, error) {
	switch cfg.PushBackend {
	case "", config.BackendWebSocket:
		return NewWebSocket(base, cfg.PushPath, logger), nil
	case config.BackendMQTT:
		if cfg.MQTT.Broker == "" {
			return nil, fmt.Errorf("mqtt backend: broker is not configured")
		}
		return NewMQTT(cfg.MQTT, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.PushBackend)
	}
}
