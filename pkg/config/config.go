package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

// AuthKeyEnv overrides the auth key of both the server and client sections.
const AuthKeyEnv = "LOCKBOX_AUTH_KEY"

type Config struct {
	LogLevel string       `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
	Client   ClientConfig `yaml:"client"`
}

type ServerConfig struct {
	Listen        string `yaml:"listen"`
	StorageDir    string `yaml:"storage_dir"`
	ChunkSize     string `yaml:"chunk_size"`     // max bytes per read/write call, e.g. "1MiB"
	MetricsListen string `yaml:"metrics_listen"` // empty disables the HTTP side
	JournalPath   string `yaml:"journal_path"`   // empty disables the journal
	LockTTL       string `yaml:"lock_ttl"`       // "0" keeps locks until released
	SweepInterval string `yaml:"sweep_interval"`
	AuthKey       string `yaml:"auth_key"`
}

type ClientConfig struct {
	Server      string `yaml:"server"`
	DownloadDir string `yaml:"download_dir"`
	ChunkSize   string `yaml:"chunk_size"`
	Compression string `yaml:"compression"` // "" or "zstd"
	Timeout     string `yaml:"timeout"`     // connect timeout
	AuthKey     string `yaml:"auth_key"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Listen:        ":50005",
			StorageDir:    "server_storage",
			ChunkSize:     "1MiB",
			MetricsListen: ":9105",
			JournalPath:   "lockbox-journal.db",
			LockTTL:       "0",
			SweepInterval: "10s",
		},
		Client: ClientConfig{
			Server:      "localhost:50005",
			DownloadDir: "client_storage",
			ChunkSize:   "1MiB",
			Timeout:     "5s",
		},
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from the
// file keep their default; an empty path yields the defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if key, ok := os.LookupEnv(AuthKeyEnv); ok {
		cfg.Server.AuthKey = key
		cfg.Client.AuthKey = key
	}

	cfg.Server.StorageDir = expandHome(cfg.Server.StorageDir)
	cfg.Server.JournalPath = expandHome(cfg.Server.JournalPath)
	cfg.Client.DownloadDir = expandHome(cfg.Client.DownloadDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Server.StorageDir == "" {
		errs = append(errs, errors.New("server.storage_dir is required"))
	}
	if _, err := c.Server.ChunkBytes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Server.LockTTLDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Server.SweepEvery(); err != nil {
		errs = append(errs, err)
	}

	if c.Client.Server == "" {
		errs = append(errs, errors.New("client.server is required"))
	}
	if _, err := c.Client.ChunkBytes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Client.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	switch c.Client.Compression {
	case "", "zstd":
	default:
		errs = append(errs, fmt.Errorf("client.compression: unsupported %q", c.Client.Compression))
	}

	return errors.Join(errs...)
}

func (c *ServerConfig) ChunkBytes() (int64, error) {
	return parseSize("server.chunk_size", c.ChunkSize)
}

func (c *ServerConfig) LockTTLDuration() (time.Duration, error) {
	return parseDuration("server.lock_ttl", c.LockTTL)
}

func (c *ServerConfig) SweepEvery() (time.Duration, error) {
	return parseDuration("server.sweep_interval", c.SweepInterval)
}

func (c *ClientConfig) ChunkBytes() (int64, error) {
	return parseSize("client.chunk_size", c.ChunkSize)
}

func (c *ClientConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("client.timeout", c.Timeout)
}

// sizes use binary units: "1MiB", "512k" and "1m" all mean powers of 1024
func parseSize(field, s string) (int64, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %q", field, s)
	}
	return n, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %q", field, s)
	}
	return d, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
