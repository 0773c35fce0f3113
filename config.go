package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the server configuration, read from the config file with
// environment and command line overrides.
type Config struct {
	Listen Listen
	// Appdir is the directory holding the web UI assets.
	Appdir string
	// Dbfile is the path of the sqlite database.
	Dbfile  string
	Logfile string
	// ServerName is name of server returned in info responses
	ServerName string `mapstructure:"servername"`
	// Indicates if we should auto-register unknown users at login
	AutoRegister bool `mapstructure:"autoregister"`
	AI           AIConfig
}

type Listen struct {
	Port    int
	TLSCert string `mapstructure:"tlscert"`
	TLSKey  string `mapstructure:"tlskey"`
}

// AIConfig configures the memo analyzer. An empty endpoint disables it.
type AIConfig struct {
	Endpoint   string
	APIKey     string `mapstructure:"apikey"`
	Model      string
	EmbedModel string `mapstructure:"embedmodel"`
	// AnalyzeDelay is how long memo edits have to settle before analysis.
	AnalyzeDelay time.Duration `mapstructure:"analyzedelay"`
}

// loadConfig reads the configuration. Precedence, lowest first: defaults,
// config file, MEMOKA_* environment variables, command line flags.
func loadConfig() (*Config, error) {
	pflag.String("config", "", "Path of config file")
	pflag.Int("listen.port", 8080, "Port to listen on")
	pflag.String("dbfile", "memoka.db", "Path of sqlite database")
	pflag.String("appdir", "app", "Directory with web UI assets")
	pflag.String("logfile", "",
		"Path of logfile. Use 'syslog' for syslog, 'stdout' "+
			"for standard output, or 'none' to disable logging.")
	pflag.Parse()

	v := viper.New()
	v.SetDefault("servername", "Memoka")
	v.SetDefault("autoregister", true)
	v.SetDefault("ai.analyzedelay", 2*time.Second)

	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("memoka")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("memoka-server")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/memoka")
		// A missing config file is fine, defaults and flags carry it.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &config, nil
}
