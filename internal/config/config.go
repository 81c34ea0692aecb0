// Package config loads netspotd's settings in four layers: built-in
// defaults, an optional YAML file (which can also set the listen
// address/port and admin token hash, not exposed on the CLI),
// environment variables, then CLI flags — each
// layer overriding the last, following pkg/config's
// file-then-env shape with the flag layer added on top for the
// netspot-control CLI surface.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is netspotd's fully resolved configuration.
type Config struct {
	RuntimePath   string `yaml:"runtime_path"`
	DBPath        string `yaml:"db_path"`
	ShutdownAfter int    `yaml:"shutdown_after"`
	DHTURL        string `yaml:"dht_url"`
	ShowMessages  bool   `yaml:"show_messages"`

	ListenAddress string `yaml:"listen_address"`
	ListenPort    int    `yaml:"listen_port"`

	// AdminTokenHash is a bcrypt hash of the admin secret that
	// internal/auth exchanges for bearer tokens on mutating routes.
	// Empty disables the guard,
	// matching the default on `--runtime-path /tmp` local use.
	AdminTokenHash string `yaml:"admin_token_hash"`

	TLSDomain string `yaml:"tls_domain"`
}

// Default returns the built-in defaults, applied before any file, env
// var, or flag override.
func Default() Config {
	return Config{
		RuntimePath:   "/tmp",
		ListenAddress: "127.0.0.1",
		ListenPort:    8000,
	}
}

// Load resolves the configuration: defaults, then configPath if it
// exists (absence is not an error — the YAML layer is entirely
// optional, unlike pkg/config's mandatory file), then environment
// variables, then the CLI flags in args, which Load parses with its
// own flag set (flag.CommandLine is not used). An empty db path after
// all layers defaults to <runtime path>/test.db.
func Load(configPath string, args []string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	applyEnv(&cfg)

	if err := applyFlags(&cfg, args); err != nil {
		return Config{}, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = cfg.RuntimePath + "/test.db"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if val := os.Getenv("ROCKET_ADDRESS"); val != "" {
		cfg.ListenAddress = val
	}
	if val := os.Getenv("ROCKET_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.ListenPort = port
		}
	}
	if val := os.Getenv("DB_FILE_PATH"); val != "" {
		cfg.DBPath = val
	}
}

func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("netspotd", flag.ContinueOnError)
	runtimePath := fs.String("runtime-path", cfg.RuntimePath, "directory for sockets and probe TOML files")
	dbPath := fs.String("db-path", cfg.DBPath, "SQLite database file path")
	shutdownAfter := fs.Int("shutdown-after", cfg.ShutdownAfter, "exit automatically after this many seconds (0 disables)")
	dht := fs.String("dht", cfg.DHTURL, "DHT gateway URL to forward alarms to (empty disables)")
	showMessages := fs.Bool("show-messages", cfg.ShowMessages, "log every alarm/data message")
	tlsDomain := fs.String("tls-domain", cfg.TLSDomain, "public domain to provision an ACME certificate for (empty serves plain HTTP)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RuntimePath = *runtimePath
	cfg.DBPath = *dbPath
	cfg.ShutdownAfter = *shutdownAfter
	cfg.DHTURL = *dht
	cfg.ShowMessages = *showMessages
	cfg.TLSDomain = *tlsDomain
	return nil
}
