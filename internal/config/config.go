package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

type Config struct {
	PlanFile      string
	ConfigDocFile string
	ConfigFile    string
	DBPath        string
	LogLevel      zerolog.Level
	LogFile       string

	APIPort        int      `json:"api_port"`
	TickIntervalMS int      `json:"tick_interval_ms"`
	EnableDatadog  bool     `json:"enable_datadog"`
	DDAgentAddr    string   `json:"dd_agent_addr"`
	DDNamespace    string   `json:"dd_namespace"`
	DDTags         []string `json:"dd_tags"`
	NtfyTopic      string   `json:"ntfy_topic"`
}

func Load() Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.PlanFile, "plan-file", "data/plan.json", "Path to the floor-plan snapshot file")
	flag.StringVar(&cfg.ConfigDocFile, "config-doc", "data/site-config.json", "Path to the fire-alarm configuration document")
	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to simulator config file")
	flag.StringVar(&cfg.DBPath, "db", "data/firesim.db", "Path to the simulation history database")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Log file path (empty logs to stderr)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
	}
	if cfg.TickIntervalMS == 0 {
		cfg.TickIntervalMS = 250
	}

	cfg.validate()
	return cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	if cfg.PlanFile == "" {
		panic("Missing required config field: plan-file")
	}
	if cfg.ConfigDocFile == "" {
		panic("Missing required config field: config-doc")
	}
	if cfg.APIPort < 1 || cfg.APIPort > 65535 {
		panic(fmt.Sprintf("Invalid api_port: %d", cfg.APIPort))
	}
	if cfg.EnableDatadog && cfg.DDAgentAddr == "" {
		panic("enable_datadog is set but dd_agent_addr is empty")
	}
}
