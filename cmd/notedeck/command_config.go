package main

import (
	"encoding/json"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"notedeck/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
	load   func() (config.Config, error)
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string        `json:"config_path,omitempty" toml:"config_path,omitempty"`
	DataDir    string        `json:"data_dir,omitempty" toml:"data_dir,omitempty"`
	Config     config.Config `json:"config" toml:"config"`
}

func NewConfigCommand(stdout, stderr io.Writer, load func() (config.Config, error)) *ConfigCommand {
	if load == nil {
		load = config.Load
	}
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
		load:   load,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatTOML, "output format: toml|json")
	paths := fs.Bool("paths", false, "include the config file and data dir paths")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if !*defaults {
		cfg, err = c.load()
		if err != nil {
			return err
		}
	}
	cfg.Auth.GoogleClientSecret = maskSecret(cfg.Auth.GoogleClientSecret)
	if !*paths {
		if resolvedFormat == configFormatJSON {
			return writeConfigOutput(c.stdout, resolvedFormat, cfg)
		}
		data, err := cfg.TOML()
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(data)
		return err
	}
	layout, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	out := configOutput{Config: cfg, ConfigPath: layout.Config, DataDir: layout.DataDir}
	return writeConfigOutput(c.stdout, resolvedFormat, out)
}

func maskSecret(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}
	return "********"
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatTOML:
		return configFormatTOML, nil
	case configFormatJSON:
		return configFormatJSON, nil
	default:
		return "", usagef("invalid format: %s (use toml|json)", raw)
	}
}

func writeConfigOutput(output io.Writer, format string, payload any) error {
	switch format {
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = output.Write(data)
		return err
	default:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}
}
