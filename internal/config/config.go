package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrInvalid = errors.New("invalid config")

// Config is the service configuration. Durations are Go duration strings
// in the JSON file ("30s", "5m").
type Config struct {
	Addr            string   `json:"addr"`
	Capacity        int      `json:"capacity"`
	CleanupInterval Duration `json:"cleanup_interval"`
	DefaultTTL      Duration `json:"default_ttl"`

	Log struct {
		Level  string `json:"level"`
		Pretty bool   `json:"pretty"`
	} `json:"log"`
}

// Duration wraps time.Duration with string JSON encoding.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Addr = ":8080"
	c.Capacity = 1000
	c.CleanupInterval = Duration(time.Minute)
	c.Log.Level = "info"
	return c
}

// Load reads a JSON config file on top of Default. Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalid, c.Capacity)
	case c.CleanupInterval < 0:
		return fmt.Errorf("%w: cleanup_interval is negative", ErrInvalid)
	case c.DefaultTTL < 0:
		return fmt.Errorf("%w: default_ttl is negative", ErrInvalid)
	}
	return nil
}
