package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"ohpshaw-server/internal/util"
)

const defaultConfigFile = "config.yaml"

// Config provides configuration for the Oh Pshaw server
type Config struct {
	loaded bool

	// Addr is the address of the line protocol listener
	Addr string `yaml:"addr" envconfig:"addr"`

	// HTTPAddr is the address of the status and websocket server
	HTTPAddr string `yaml:"httpAddr" envconfig:"http_addr"`

	// Players is the number of players in a fresh game
	Players int `yaml:"players" envconfig:"players"`

	// LogDir is where game logs are written
	LogDir string `yaml:"logDir" envconfig:"log_dir"`

	// TurnTimeout is how long a player has to bid or play; zero waits forever
	TurnTimeout time.Duration `yaml:"turnTimeout" envconfig:"turn_timeout"`

	AutoPlayLastCard bool `yaml:"autoPlayLastCard" envconfig:"auto_play_last_card"`

	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

var config Config

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	cfg := Config{
		Addr:     ":7000",
		HTTPAddr: ":5000",
		Players:  4,
		LogDir:   ".",
	}
	cfg.Log.Level = "info"

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// The YAML file named by OHP_CONFIG_FILE (default config.yaml) is applied over the defaults, then
// environment variables prefixed with OHP_. A missing default file is not an error.
func Load() error {
	configFile := util.Getenv("OHP_CONFIG_FILE", defaultConfigFile)

	cfg := DefaultConfig()
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) || configFile != defaultConfigFile {
		return err
	}

	if err := envconfig.Process("ohp", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
