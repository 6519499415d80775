package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"searchprobe/lib/configutil"
	"strings"
)

type EbayConfig struct {
	AppID             string  `json:"app_id"`
	BaseURL           string  `json:"base_url"`
	GlobalID          string  `json:"global_id"`
	ServiceVersion    string  `json:"service_version"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type TwitterConfig struct {
	ConsumerKey       string  `json:"consumer_key"`
	ConsumerSecret    string  `json:"consumer_secret"`
	AccessToken       string  `json:"access_token"`
	AccessSecret      string  `json:"access_secret"`
	BaseURL           string  `json:"base_url"`
	TokenURL          string  `json:"token_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Config struct {
	Ebay    EbayConfig    `json:"ebay"`
	Twitter TwitterConfig `json:"twitter"`
}

// environment variables consulted when the config file leaves a
// credential empty
var envFallbacks = []struct {
	name  string
	field func(c *Config) *string
}{
	{"EBAY_APP_ID", func(c *Config) *string { return &c.Ebay.AppID }},
	{"TWITTER_CONSUMER_KEY", func(c *Config) *string { return &c.Twitter.ConsumerKey }},
	{"TWITTER_CONSUMER_SECRET", func(c *Config) *string { return &c.Twitter.ConsumerSecret }},
	{"TWITTER_ACCESS_TOKEN", func(c *Config) *string { return &c.Twitter.AccessToken }},
	{"TWITTER_ACCESS_SECRET", func(c *Config) *string { return &c.Twitter.AccessSecret }},
}

// loadConfig reads path and its local override. A missing file is not an
// error, credentials may come from the environment alone.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using the environment only", "path", path)
		cfg = Config{}
	} else if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	for _, fallback := range envFallbacks {
		field := fallback.field(&cfg)
		if *field != "" {
			continue
		}
		*field = os.Getenv(fallback.name)
	}
	return cfg, nil
}

var ErrMissingConfig = errors.New("missing configuration")

func missingKeys(keys []string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(keys, ", "))
}

func (c EbayConfig) Validate() error {
	if c.AppID == "" {
		return missingKeys([]string{"ebay.app_id (or EBAY_APP_ID)"})
	}
	return nil
}

func (c TwitterConfig) Validate() error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "twitter.consumer_key (or TWITTER_CONSUMER_KEY)")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "twitter.consumer_secret (or TWITTER_CONSUMER_SECRET)")
	}
	// a user context needs both halves of the access token
	if c.AccessToken != "" && c.AccessSecret == "" {
		missing = append(missing, "twitter.access_secret (or TWITTER_ACCESS_SECRET)")
	}
	if c.AccessSecret != "" && c.AccessToken == "" {
		missing = append(missing, "twitter.access_token (or TWITTER_ACCESS_TOKEN)")
	}
	if len(missing) > 0 {
		return missingKeys(missing)
	}
	return nil
}
