package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrInvalidPattern is returned when host_pattern is not a valid regular expression.
var ErrInvalidPattern = errors.New("config: invalid host pattern")

// Push backends understood by the transport layer.
const (
	BackendWebSocket = "websocket"
	BackendMQTT      = "mqtt"
)

// Config captures everything ticontrol needs to reach the device server.
type Config struct {
	DevAPI      string
	ProdAPI     string
	HostPattern string
	Theme       string
	ResyncEvery time.Duration // zero disables periodic resync
	PushBackend string
	PushPath    string
	MQTT        MQTTConfig
	Log         LogConfig
}

// MQTTConfig configures the optional MQTT push backend.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
}

// LogConfig configures the diagnostic log file.
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

const (
	defaultConfigPath  = "~/.config/ticontrol/config.toml"
	defaultLogFile     = "~/.local/share/ticontrol/ticontrol.log"
	defaultDevAPI      = "http://localhost:5020"
	defaultProdAPI     = "http://localhost:5000"
	defaultHostPattern = "localhost"
	defaultTheme       = "Nightfox"
	defaultPushPath    = "/events"
	defaultMQTTClient  = "ticontrol"
	defaultMQTTPrefix  = "ticontrol/events"
	defaultLogLevel    = "info"
	defaultMaxSizeMB   = 5
	defaultMaxBackups  = 3
)

type rawConfig struct {
	DevAPI        string `toml:"dev_api"`
	ProdAPI       string `toml:"prod_api"`
	HostPattern   string `toml:"host_pattern"`
	Theme         string `toml:"theme"`
	ResyncSeconds int    `toml:"resync_seconds"`
	Push          struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"push"`
	MQTT struct {
		Broker      string `toml:"broker"`
		ClientID    string `toml:"client_id"`
		TopicPrefix string `toml:"topic_prefix"`
		Username    string `toml:"username"`
		Password    string `toml:"password"`
	} `toml:"mqtt"`
	Log struct {
		File       string `toml:"file"`
		Level      string `toml:"level"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
	} `toml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DevAPI:      defaultDevAPI,
		ProdAPI:     defaultProdAPI,
		HostPattern: defaultHostPattern,
		Theme:       defaultTheme,
		PushBackend: BackendWebSocket,
		PushPath:    defaultPushPath,
		MQTT: MQTTConfig{
			ClientID:    defaultMQTTClient,
			TopicPrefix: defaultMQTTPrefix,
		},
		Log: LogConfig{
			File:       mustExpand(defaultLogFile),
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
		},
	}
}

// Load locates and parses the ticontrol config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.DevAPI = orDefault(raw.DevAPI, defaultDevAPI)
	cfg.ProdAPI = orDefault(raw.ProdAPI, defaultProdAPI)
	cfg.HostPattern = orDefault(raw.HostPattern, defaultHostPattern)
	cfg.Theme = orDefault(raw.Theme, defaultTheme)
	if raw.ResyncSeconds > 0 {
		cfg.ResyncEvery = time.Duration(raw.ResyncSeconds) * time.Second
	}

	cfg.PushBackend = strings.ToLower(orDefault(raw.Push.Backend, BackendWebSocket))
	cfg.PushPath = orDefault(raw.Push.Path, defaultPushPath)

	cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	cfg.MQTT.ClientID = orDefault(raw.MQTT.ClientID, defaultMQTTClient)
	cfg.MQTT.TopicPrefix = strings.TrimSuffix(orDefault(raw.MQTT.TopicPrefix, defaultMQTTPrefix), "/")
	cfg.MQTT.Username = strings.TrimSpace(raw.MQTT.Username)
	cfg.MQTT.Password = raw.MQTT.Password

	cfg.Log.File = mustExpand(orDefault(raw.Log.File, defaultLogFile))
	cfg.Log.Level = orDefault(raw.Log.Level, defaultLogLevel)
	if raw.Log.MaxSizeMB > 0 {
		cfg.Log.MaxSizeMB = raw.Log.MaxSizeMB
	}
	if raw.Log.MaxBackups > 0 {
		cfg.Log.MaxBackups = raw.Log.MaxBackups
	}

	return cfg, nil
}

// SelectAPI picks the command-channel base address for the given host name.
// A host matching HostPattern selects DevAPI, anything else ProdAPI.
func (c Config) SelectAPI(hostname string) (string, error) {
	pattern := c.HostPattern
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultHostPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}
	if re.MatchString(hostname) {
		return c.DevAPI, nil
	}
	return c.ProdAPI, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
