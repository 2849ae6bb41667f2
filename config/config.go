package config

import (
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the dashboard configuration
type Config struct {
	Firebase        FirebaseConfig `yaml:"firebase"`
	Control         ControlConfig  `yaml:"control"`
	HTTP            HTTPConfig     `yaml:"http"`
	Log             LogConfig      `yaml:"log"`
	Alerts          AlertsConfig   `yaml:"alerts"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"`
}

// FirebaseConfig selects the Firestore project
type FirebaseConfig struct {
	ProjectID       string   `yaml:"project_id"`
	CredentialsFile string   `yaml:"credentials_file"` // empty = application default credentials
	RetryInterval   Duration `yaml:"retry_interval"`   // wait before re-opening a broken listener
}

// ControlConfig points at the device-control server
type ControlConfig struct {
	BaseURL string   `yaml:"base_url"` // e.g. http://192.168.1.10:5000/api
	Timeout Duration `yaml:"timeout"`  // 0 = no timeout
}

// HTTPConfig contains the dashboard web server settings
type HTTPConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// AlertsConfig enables threshold alerts via Pub/Sub
type AlertsConfig struct {
	Enabled    bool                 `yaml:"enabled"`
	Topic      string               `yaml:"topic"`
	Thresholds map[string]Threshold `yaml:"thresholds"` // keyed by sensor kind
}

type Threshold struct {
	Max float64 `yaml:"max"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads a .env file if present, then parses the configuration file
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses YAML configuration, expanding ${VAR} references first
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	if cfg.Firebase.ProjectID == "" {
		cfg.Firebase.ProjectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.Firebase.RetryInterval == 0 {
		cfg.Firebase.RetryInterval = Duration(5 * time.Second)
	}
	if cfg.Control.BaseURL == "" {
		cfg.Control.BaseURL = "http://localhost:5000/api"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(10 * time.Second)
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} with the environment value; unknown variables
// expand to an empty string
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
