package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/five82/ticontrol/internal/config"
	"github.com/five82/ticontrol/internal/logging"
)

const (
	mqttConnectTimeout    = 10 * time.Second
	mqttKeepAlive         = 30 * time.Second
	mqttDisconnectQuiesce = 250 // milliseconds
	mqttQoS               = 1
)

// MQTT is a PushChannel that subscribes to <prefix>/# on a broker. The event
// name is the topic with the prefix removed.
type MQTT struct {
	cfg    config.MQTTConfig
	logger *logging.Logger

	newClient        func(*pahomqtt.ClientOptions) pahomqtt.Client
	subscribeTimeout time.Duration
}

// NewMQTT creates an MQTT push channel from cfg.
func NewMQTT(cfg config.MQTTConfig, logger *logging.Logger) *MQTT {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MQTT{
		cfg:       cfg,
		logger:    logger.With("component", "mqtt"),
		newClient:        pahomqtt.NewClient,
		subscribeTimeout: mqttConnectTimeout,
	}
}

// Topic returns the subscription filter.
func (m *MQTT) Topic() string {
	return m.cfg.TopicPrefix + "/#"
}

// Run connects, keeps the subscription alive across reconnects and blocks
// until ctx is cancelled.
func (m *MQTT) Run(ctx context.Context, h PushHandlers) error {
	opts := m.options()
	opts.SetOnConnectHandler(m.onConnect(h))
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		h.Down(fmt.Errorf("%w: %w", ErrNotConnected, err))
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		m.logger.Debug("mqtt reconnecting", "broker", m.cfg.Broker)
	})

	client := m.newClient(opts)
	token := client.Connect()
	go func() {
		// With ConnectRetry the token completes only once connected or
		// after Disconnect.
		<-token.Done()
		if err := token.Error(); err != nil && ctx.Err() == nil {
			m.logger.Warn("mqtt connect failed", "broker", m.cfg.Broker, "error", err)
		}
	}()

	<-ctx.Done()
	client.Disconnect(mqttDisconnectQuiesce)
	return nil
}

// onConnect subscribes on every (re)connect. The channel is only reported up
// once the broker has acknowledged the subscription.
func (m *MQTT) onConnect(h PushHandlers) pahomqtt.OnConnectHandler {
	return func(c pahomqtt.Client) {
		token := c.Subscribe(m.Topic(), mqttQoS, m.messageHandler(h))
		if !token.WaitTimeout(m.subscribeTimeout) {
			m.logger.Error("subscribe timed out", "topic", m.Topic(), "timeout", m.subscribeTimeout)
			h.Down(fmt.Errorf("%w: subscribe %s timed out", ErrNotConnected, m.Topic()))
			return
		}
		if err := token.Error(); err != nil {
			m.logger.Error("subscribe failed", "topic", m.Topic(), "error", err)
			h.Down(fmt.Errorf("%w: subscribe %s: %w", ErrNotConnected, m.Topic(), err))
			return
		}
		h.Up()
	}
}

func (m *MQTT) options() *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(m.cfg.Broker)
	opts.SetClientID(m.cfg.ClientID)
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(defaultReconnectDelay)
	opts.SetMaxReconnectInterval(maxBackoff)
	opts.SetKeepAlive(mqttKeepAlive)
	opts.SetConnectTimeout(mqttConnectTimeout)
	return opts
}

func (m *MQTT) messageHandler(h PushHandlers) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		event, ok := eventName(m.cfg.TopicPrefix, msg.Topic())
		if !ok {
			m.logger.Debug("ignoring topic", "topic", msg.Topic())
			return
		}
		h.Frame(event, msg.Payload())
	}
}

// eventName strips prefix from topic. Nested suffixes keep their slashes.
func eventName(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
