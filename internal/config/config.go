package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server ServerConfig `yaml:"server"`
	CORS   CORSConfig   `yaml:"cors"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// Env is "development" or "production"; production puts gin in release mode.
	Env string `yaml:"env"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// RequestTopic may contain one "+" wildcard naming the requesting client,
	// e.g. "insulin/+/dose/request".
	RequestTopic string `yaml:"request_topic"`
	// ResponseTopic may contain "{client_id}", replaced by the wildcard segment.
	ResponseTopic string `yaml:"response_topic"`
	// QoS is nil when the file leaves it out, so an explicit 0 survives Merge.
	QoS *byte `yaml:"qos"`
}

const defaultQoS byte = 1

// QoSLevel returns the configured QoS, or the default when unset.
func (m MQTTConfig) QoSLevel() byte {
	if m.QoS == nil {
		return defaultQoS
	}
	return *m.QoS
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port: "8080",
			Env:  "development",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		MQTT: MQTTConfig{
			Enabled:       false,
			Broker:        "tcp://localhost:1883",
			ClientID:      "insulin-infusion",
			RequestTopic:  "insulin/+/dose/request",
			ResponseTopic: "insulin/{client_id}/dose/response",
			QoS:           byteOf(defaultQoS),
		},
	}
}

// Load reads an optional YAML file, fills unset fields from Default, applies
// .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(Default(), *c)
	// Load .env file if it exists
	_ = godotenv.Load()
	ApplyEnv(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadUnchecked loads the YAML file as-is. An empty path yields an empty config.
func LoadUnchecked(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.RequestTopic == "" || c.MQTT.ResponseTopic == "" {
			return errors.New("mqtt.request_topic and mqtt.response_topic are required when mqtt is enabled")
		}
		if strings.Count(c.MQTT.RequestTopic, "+") > 1 || strings.Contains(c.MQTT.RequestTopic, "#") {
			return fmt.Errorf("mqtt.request_topic %q may contain at most one + wildcard and no #", c.MQTT.RequestTopic)
		}
	}
	if q := c.MQTT.QoSLevel(); q > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", q)
	}
	return nil
}

// Production reports whether the server runs in release mode.
func (c *Config) Production() bool {
	return c.Server.Env == "production"
}

// Merge overlays non-zero fields from override onto base.
func Merge(base, override Config) Config {
	out := base
	if override.Server.Port != "" {
		out.Server.Port = override.Server.Port
	}
	if override.Server.Env != "" {
		out.Server.Env = override.Server.Env
	}
	if len(override.CORS.AllowedOrigins) > 0 {
		out.CORS.AllowedOrigins = override.CORS.AllowedOrigins
	}
	// Note: enabled=false in a file cannot switch off a default; defaults keep MQTT off.
	if override.MQTT.Enabled {
		out.MQTT.Enabled = true
	}
	if override.MQTT.Broker != "" {
		out.MQTT.Broker = override.MQTT.Broker
	}
	if override.MQTT.ClientID != "" {
		out.MQTT.ClientID = override.MQTT.ClientID
	}
	if override.MQTT.Username != "" {
		out.MQTT.Username = override.MQTT.Username
	}
	if override.MQTT.Password != "" {
		out.MQTT.Password = override.MQTT.Password
	}
	if override.MQTT.RequestTopic != "" {
		out.MQTT.RequestTopic = override.MQTT.RequestTopic
	}
	if override.MQTT.ResponseTopic != "" {
		out.MQTT.ResponseTopic = override.MQTT.ResponseTopic
	}
	if override.MQTT.QoS != nil {
		out.MQTT.QoS = byteOf(*override.MQTT.QoS)
	}
	return out
}

// ApplyEnv overrides fields from the environment.
func ApplyEnv(c *Config) {
	c.Server.Port = getEnv("API_PORT", c.Server.Port)
	c.Server.Env = getEnv("API_ENV", c.Server.Env)
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}
	c.MQTT.Enabled = getEnvBool("MQTT_ENABLED", c.MQTT.Enabled)
	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnv("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnv("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.RequestTopic = getEnv("MQTT_REQUEST_TOPIC", c.MQTT.RequestTopic)
	c.MQTT.ResponseTopic = getEnv("MQTT_RESPONSE_TOPIC", c.MQTT.ResponseTopic)
	c.MQTT.QoS = byteOf(byte(getEnvInt("MQTT_QOS", int(c.MQTT.QoSLevel()))))
}

func byteOf(b byte) *byte {
	return &b
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < 0 || intValue > 255 {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
