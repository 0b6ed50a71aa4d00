package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultConfigPath = "~/.config/sctutils/config.json"
	configEnv         = "SCTUTILS_CONFIG"
)

// FSL output types understood by FSLOUTPUTTYPE and fslchfiletype.
const (
	OutputNIFTI     = "NIFTI"
	OutputNIFTIGZ   = "NIFTI_GZ"
	OutputNIFTIPair = "NIFTI_PAIR"
)

// Config holds user-editable settings for the helpers.
type Config struct {
	FSL     FSL     `json:"fsl"`
	Console Console `json:"console"`
	Logging Logging `json:"logging"`
	Paths   Paths   `json:"paths"`
}

// FSL configures the external imaging toolkit.
type FSL struct {
	OutputType      string `json:"output_type"`      // exported as FSLOUTPUTTYPE for every command
	SizeTool        string `json:"size_tool"`        // prints dim1..4 and pixdim1..4
	OrientationTool string `json:"orientation_tool"` // sct_orientation -get -i <file>
	FileTypeTool    string `json:"filetype_tool"`    // fslchfiletype <type> <base>
	Shell           string `json:"shell"`
}

// Console controls the colored status printer.
type Console struct {
	Verbose bool `json:"verbose"`
	Color   bool `json:"color"`
}

// Logging controls logging verbosity and destinations.
type Logging struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // text, json
	FileOutput bool   `json:"file_output"` // Enable file logging
	LogDir     string `json:"log_dir"`     // Directory for log files
}

// Paths configures on-disk locations.
type Paths struct {
	DatabasePath string `json:"database_path"`
}

// Load reads configuration from disk, falling back to sensible defaults.
func Load() (*Config, error) {
	configPath := os.Getenv(configEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}
	return LoadFile(configPath)
}

// LoadFile reads the configuration at path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	expanded, err := expandUser(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path reports which configuration file Load would read.
func Path() string {
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return "(default) " + defaultConfigPath
}

// Validate checks values that would otherwise surface as confusing tool errors.
func (c *Config) Validate() error {
	switch c.FSL.OutputType {
	case OutputNIFTI, OutputNIFTIGZ, OutputNIFTIPair:
	default:
		return fmt.Errorf("unsupported fsl output_type %q", c.FSL.OutputType)
	}
	if c.FSL.Shell == "" {
		return errors.New("fsl shell must not be empty")
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FSL: FSL{
			// uncompressed output keeps intermediate steps fast
			OutputType:      OutputNIFTI,
			SizeTool:        "fslsize",
			OrientationTool: "sct_orientation",
			FileTypeTool:    "fslchfiletype",
			Shell:           "/bin/sh",
		},
		Console: Console{
			Verbose: true,
			Color:   true,
		},
		Logging: Logging{
			Level:      "warn",
			Format:     "text",
			FileOutput: false,
			LogDir:     "./logs",
		},
		Paths: Paths{
			DatabasePath: filepath.Join(os.TempDir(), "sctutils.db"),
		},
	}
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
