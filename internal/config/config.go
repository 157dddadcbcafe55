// Package config loads the bqmba YAML configuration.
package config

import (
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/bqmba/config.yaml"

type Config struct {
	Bus     BusConfig     `yaml:"bus"`
	MBA     MBAConfig     `yaml:"mba"`
	Server  ServerConfig  `yaml:"server"`
	Console ConsoleConfig `yaml:"console"`
	Logging LoggingConfig `yaml:"logging"`
}

type BusConfig struct {
	Name    string `yaml:"name"`    // i2creg name, "" for the first bus
	Address uint16 `yaml:"address"` // 7-bit gauge address
}

type MBAConfig struct {
	// LengthIncludesEcho reads the block length byte as counting the
	// echoed sub-command word too. Real bq40z50 packs report it that way
	// and need this set: with the default false the two bytes after the
	// payload are taken as payload and flag bits decode from the wrong
	// bytes. See configs/bqmba.example.yaml.
	LengthIncludesEcho bool `yaml:"length_includes_echo"`
}

type ServerConfig struct {
	Listen    string `yaml:"listen"`
	JWTSecret string `yaml:"jwt_secret"` // empty disables write-only commands over HTTP
}

type ConsoleConfig struct {
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

type LoggingConfig struct {
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Address: 0x0B,
		},
		Server: ServerConfig{
			Listen: ":3000",
		},
		Console: ConsoleConfig{
			BaudRate: 115200,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path, then applies environment overrides. A missing or broken
// file falls back to defaults.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		cfg = Default()
	} else {
		log.Printf("[config] loaded from %s", path)
	}

	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides supports BQMBA_BUS, BQMBA_ADDR, BQMBA_LISTEN,
// BQMBA_SERIAL_PORT, BQMBA_JWT_SECRET, BQMBA_LOG_FILE and
// BQMBA_LENGTH_INCLUDES_ECHO.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BQMBA_BUS"); v != "" {
		c.Bus.Name = v
	}
	if v := os.Getenv("BQMBA_ADDR"); v != "" {
		if n, err := strconv.ParseUint(v, 0, 7); err == nil {
			c.Bus.Address = uint16(n)
		} else {
			log.Printf("[config] ignoring BQMBA_ADDR=%q: %v", v, err)
		}
	}
	if v := os.Getenv("BQMBA_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("BQMBA_SERIAL_PORT"); v != "" {
		c.Console.SerialPort = v
	}
	if v := os.Getenv("BQMBA_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("BQMBA_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("BQMBA_LENGTH_INCLUDES_ECHO"); v != "" {
		c.MBA.LengthIncludesEcho = v == "1" || v == "true" || v == "yes"
	}
}

// LogOutput returns the process log destination: a rotating file when
// logging.file is set, stderr otherwise.
func (c *Config) LogOutput() io.Writer {
	if c.Logging.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   c.Logging.File,
		MaxSize:    c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}
