package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key for environment overrides,
// e.g. LNTRACK_STORE_BACKEND.
const EnvPrefix = "LNTRACK"

type Config struct {
	Debug bool `yaml:"debug"`

	StoreBackend string `yaml:"store_backend"`
	StorePath    string `yaml:"store_path"`
	SQLitePath   string `yaml:"sqlite_path"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`

	UserAgent        string `yaml:"user_agent"`
	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	Retries          int    `yaml:"retries"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	Workers int `yaml:"workers"`
}

// Options are command-line overrides; zero values leave the config as is.
type Options struct {
	IgnoreConfig     bool
	Debug            bool
	StoreBackend     string
	StorePath        string
	UserAgent        string
	Cookie           string
	CookieFile       string
	CloudflareBypass bool
	ListenAddr       string
	Workers          int
}

func DefaultConfig() *Config {
	return &Config{
		StoreBackend:   "file",
		StorePath:      filepath.Join(DataDir(), "library.json"),
		SQLitePath:     filepath.Join(DataDir(), "library.db"),
		RedisAddr:      "localhost:6379",
		RedisChannel:   "lntracker:changes",
		TimeoutSeconds: 20,
		Retries:        3,
		ListenAddr:     "127.0.0.1:8765",
		AllowedOrigins: []string{},
		Workers:        4,
	}
}

// Timeout is TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective config: the active profile (or
// defaults), then LNTRACK_* environment variables, then opts.
func LoadMerged(opts Options) (*Config, string, error) {
	cfg, used, err := loadActive(opts.IgnoreConfig)
	if err != nil {
		return nil, "", err
	}

	applyEnv(cfg, envSource())
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, used, nil
}

func loadActive(ignore bool) (*Config, string, error) {
	if ignore {
		return DefaultConfig(), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		return DefaultConfig(), "(default config in memory)\nRun `lntrack config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return cfg, activePath, nil
}

func envSource() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	return v
}

var envKeys = []string{
	"debug", "store_backend", "store_path", "sqlite_path", "redis_addr",
	"redis_channel", "user_agent", "cookie", "cookie_file", "timeout_seconds",
	"retries", "cloudflare_bypass", "listen_addr", "allowed_origins", "workers",
}

func applyEnv(c *Config, v *viper.Viper) {
	str := map[string]*string{
		"store_backend": &c.StoreBackend,
		"store_path":    &c.StorePath,
		"sqlite_path":   &c.SQLitePath,
		"redis_addr":    &c.RedisAddr,
		"redis_channel": &c.RedisChannel,
		"user_agent":    &c.UserAgent,
		"cookie":        &c.Cookie,
		"cookie_file":   &c.CookieFile,
		"listen_addr":   &c.ListenAddr,
	}
	for k, dst := range str {
		if v.IsSet(k) {
			*dst = v.GetString(k)
		}
	}

	ints := map[string]*int{
		"timeout_seconds": &c.TimeoutSeconds,
		"retries":         &c.Retries,
		"workers":         &c.Workers,
	}
	for k, dst := range ints {
		if v.IsSet(k) {
			*dst = v.GetInt(k)
		}
	}

	if v.IsSet("debug") {
		c.Debug = v.GetBool("debug")
	}
	if v.IsSet("cloudflare_bypass") {
		c.CloudflareBypass = v.GetBool("cloudflare_bypass")
	}
	if v.IsSet("allowed_origins") {
		c.AllowedOrigins = splitList(v.GetString("allowed_origins"))
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.StoreBackend != "" {
		c.StoreBackend = o.StoreBackend
	}
	if o.StorePath != "" {
		switch c.StoreBackend {
		case "sqlite":
			c.SQLitePath = o.StorePath
		default:
			c.StorePath = o.StorePath
		}
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.ListenAddr != "" {
		c.ListenAddr = o.ListenAddr
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.StoreBackend == "" {
		c.StoreBackend = def.StoreBackend
	}
	if c.StorePath == "" {
		c.StorePath = def.StorePath
	}
	if c.SQLitePath == "" {
		c.SQLitePath = def.SQLitePath
	}
	if c.RedisChannel == "" {
		c.RedisChannel = def.RedisChannel
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.Retries <= 0 {
		c.Retries = 1
	}
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -store_backend: %s\n", c.StoreBackend)
	switch c.StoreBackend {
	case "sqlite":
		fmt.Fprintf(w, " -sqlite_path: %s\n", c.SQLitePath)
	case "redis":
		fmt.Fprintf(w, " -redis_addr: %s\n", c.RedisAddr)
		fmt.Fprintf(w, " -redis_channel: %s\n", c.RedisChannel)
	case "memory":
	default:
		fmt.Fprintf(w, " -store_path: %s\n", c.StorePath)
	}
	fmt.Fprintf(w, " -timeout_seconds: %d\n", c.TimeoutSeconds)
	fmt.Fprintf(w, " -retries: %d\n", c.Retries)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -listen_addr: %s\n", c.ListenAddr)
	if len(c.AllowedOrigins) > 0 {
		fmt.Fprintf(w, " -allowed_origins: %s\n", strings.Join(c.AllowedOrigins, ", "))
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
}
