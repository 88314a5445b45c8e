package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrCredentialMissing = errors.New("cloudflare API token missing")
)

const (
	HistoryBackendFile = "file"
	HistoryBackendEtcd = "etcd"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	// Interval between passes in seconds. Zero runs a single pass.
	Interval int `mapstructure:"interval"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig selects how one address family is discovered.
type SourceConfig struct {
	Interface string `mapstructure:"interface"`
	HTTP      string `mapstructure:"http"`
}

func (s SourceConfig) Enabled() bool {
	return s.Interface != "" || s.HTTP != ""
}

type DiscoveryConfig struct {
	IPv4 SourceConfig `mapstructure:"ipv4"`
	IPv6 SourceConfig `mapstructure:"ipv6"`
}

// EtcdConfig holds etcd-related configuration.
type EtcdConfig struct {
	Endpoints   []string `mapstructure:"endpoints"`
	Key         string   `mapstructure:"key"`
	DialTimeout float64  `mapstructure:"dial_timeout"`
}

type HistoryConfig struct {
	Backend string     `mapstructure:"backend"`
	Path    string     `mapstructure:"path"`
	Etcd    EtcdConfig `mapstructure:"etcd"`
}

type CloudflareConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
	PerPage int    `mapstructure:"per_page"`
}

type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

type RecordConfig struct {
	Name    string `mapstructure:"name"`
	TTL     *int   `mapstructure:"ttl"`
	Proxied *bool  `mapstructure:"proxied"`
	Suffix  string `mapstructure:"suffix"`
	EUI64   string `mapstructure:"eui64"`
}

type ZoneConfig struct {
	Name    string         `mapstructure:"name"`
	Records []RecordConfig `mapstructure:"records"`
}

// Config is the top-level configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    LoggingConfig    `mapstructure:"log"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	History    HistoryConfig    `mapstructure:"history"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Zones      []ZoneConfig     `mapstructure:"zones"`
}

// InitConfig sets defaults, binds the environment and reads the config file.
// An empty path searches for config.yaml in the working directory and
// /etc/ddns-sync.
func InitConfig(path string) error {
	viper.SetDefault("app.interval", 0)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("history.backend", HistoryBackendFile)
	viper.SetDefault("history.path", "/var/lib/ddns-sync/history.json")
	viper.SetDefault("history.etcd.endpoints", []string{"localhost:2379"})
	viper.SetDefault("history.etcd.key", "/ddns-sync/history")
	viper.SetDefault("history.etcd.dial_timeout", 2.0)
	viper.SetDefault("cloudflare.base_url", "")
	viper.SetDefault("cloudflare.per_page", 100)
	viper.SetDefault("metrics.textfile_path", "")

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/ddns-sync")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: no configuration file found", ErrInvalidConfig)
		}
		return fmt.Errorf("%w: error reading config file: %w", ErrInvalidConfig, err)
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.BindEnv("cloudflare.token", "CLOUDFLARE_TOKEN"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Load unmarshals the configuration into the Config struct and validates it.
// Unknown keys are rejected.
func Load() (*Config, error) {
	var config Config
	if err := viper.UnmarshalExact(&config); err != nil {
		return nil, fmt.Errorf("%w: unable to decode into struct: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.App.Interval < 0 {
		return invalid("app.interval must not be negative")
	}

	switch c.History.Backend {
	case HistoryBackendFile:
		if c.History.Path == "" {
			return invalid("history.path is required for the file backend")
		}
	case HistoryBackendEtcd:
		if len(c.History.Etcd.Endpoints) == 0 {
			return invalid("history.etcd.endpoints is required for the etcd backend")
		}
		if c.History.Etcd.Key == "" {
			return invalid("history.etcd.key is required for the etcd backend")
		}
	default:
		return invalid("unknown history.backend %q", c.History.Backend)
	}

	if err := validateSource("ipv4", c.Discovery.IPv4); err != nil {
		return err
	}
	if err := validateSource("ipv6", c.Discovery.IPv6); err != nil {
		return err
	}

	if c.Cloudflare.PerPage < 5 || c.Cloudflare.PerPage > 5000 {
		return invalid("cloudflare.per_page must be between 5 and 5000, got %d", c.Cloudflare.PerPage)
	}
	if c.Cloudflare.BaseURL != "" {
		if _, err := parseHTTPURL(c.Cloudflare.BaseURL); err != nil {
			return invalid("cloudflare.base_url: %v", err)
		}
	}

	if _, err := c.ZoneSpecs(); err != nil {
		return err
	}

	if c.Cloudflare.Token == "" {
		return fmt.Errorf("%w: set CLOUDFLARE_TOKEN or cloudflare.token", ErrCredentialMissing)
	}
	return nil
}

// ZoneSpecs converts the zone configuration into domain values.
func (c *Config) ZoneSpecs() ([]domain.ZoneSpec, error) {
	specs := make([]domain.ZoneSpec, 0, len(c.Zones))
	for i, zc := range c.Zones {
		if zc.Name == "" {
			return nil, invalid("zones[%d]: name is required", i)
		}
		spec := domain.ZoneSpec{
			Name:    zc.Name,
			Records: make([]domain.RecordSpec, 0, len(zc.Records)),
		}
		for j, rc := range zc.Records {
			rs, err := rc.spec()
			if err != nil {
				return nil, invalid("zones[%d].records[%d]: %v", i, j, err)
			}
			spec.Records = append(spec.Records, rs)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (rc RecordConfig) spec() (domain.RecordSpec, error) {
	if rc.Name == "" {
		return domain.RecordSpec{}, errors.New("name is required")
	}
	if rc.Suffix != "" && rc.EUI64 != "" {
		return domain.RecordSpec{}, errors.New("suffix and eui64 are mutually exclusive")
	}
	if rc.TTL != nil && *rc.TTL < 1 {
		return domain.RecordSpec{}, fmt.Errorf("ttl must be positive, got %d", *rc.TTL)
	}

	rs := domain.RecordSpec{
		Name:    rc.Name,
		TTL:     rc.TTL,
		Proxied: rc.Proxied,
	}

	raw := rc.Suffix
	if raw == "" {
		raw = rc.EUI64
	}
	if raw != "" {
		suffix, err := netip.ParseAddr(raw)
		if err != nil || !suffix.Is6() || suffix.Is4In6() {
			return domain.RecordSpec{}, fmt.Errorf("suffix %q is not an IPv6 address", raw)
		}
		rs.Suffix = suffix
	}
	return rs, nil
}

func validateSource(family string, s SourceConfig) error {
	if s.Interface != "" && s.HTTP != "" {
		return invalid("discovery.%s: interface and http are mutually exclusive", family)
	}
	if s.HTTP != "" {
		if _, err := parseHTTPURL(s.HTTP); err != nil {
			return invalid("discovery.%s.http: %v", family, err)
		}
	}
	return nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return u, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
