// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is built once per command and treated as read-only afterwards.
type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		Env     string `yaml:"env"` // production | development
	} `yaml:"app"`

	Greenhouse struct {
		BaseURL            string   `yaml:"base_url"`
		SourceBoard        string   `yaml:"source_board"`
		TargetBoard        string   `yaml:"target_board"`
		ProtectedBoards    []string `yaml:"protected_boards"`
		RecruiterTag       string   `yaml:"recruiter_tag"`
		FilteredAttributes []string `yaml:"filtered_attributes"`
	} `yaml:"greenhouse"`

	Regions map[string][]string `yaml:"regions"`

	Geocoding struct {
		BaseURL     string `yaml:"base_url"`
		AccessToken string `yaml:"access_token"`
	} `yaml:"geocoding"`

	Browser struct {
		Headless       bool   `yaml:"headless"`
		ExecPath       string `yaml:"exec_path"`
		UserAgent      string `yaml:"user_agent"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"browser"`

	Auth struct {
		Method     string `yaml:"method"` // greenhouse | sso
		Email      string `yaml:"email"`
		CookieName string `yaml:"cookie_name"`
	} `yaml:"auth"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		// GeocodePerSecond paces Mapbox separately; zero shares the Greenhouse rate.
		GeocodePerSecond float64 `yaml:"geocode_per_second"`
	} `yaml:"rate_limit"`

	Cache struct {
		RedisURL string `yaml:"redis_url"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"cache"`
}

// New merges each override document onto Default. Unknown keys fail. An
// override that sets regions replaces the region table as a whole.
func New(overrides ...[]byte) (Config, error) {
	cfg := Default()
	for i, b := range overrides {
		var head struct {
			Regions map[string][]string `yaml:"regions"`
		}
		if err := yaml.Unmarshal(b, &head); err != nil {
			return Config{}, fmt.Errorf("config override %d: %w", i, err)
		}
		if head.Regions != nil {
			cfg.Regions = nil
		}

		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config override %d: %w", i, err)
		}
	}

	out, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		return Config{}, errors.New("config validation failed:\n- " + joinLines(res.Errors))
	}
	return out, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return New(b)
}

func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c Config) Development() bool { return c.App.Env == "development" }
