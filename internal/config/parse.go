package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat     = errors.New("unknown config format")
	ErrUndefinedVariable = errors.New("undefined variable")
)

// Format is the syntax of a configuration document.
type Format string

const (
	YAML  Format = "yaml"
	JSONC Format = "jsonc"
)

// FormatFromPath guesses the format of a file from its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".jsonc", ".json":
		return JSONC, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// Parse decodes a document and expands the ${NAME} references of its paths and step options.
func Parse(data []byte, format Format) (*Config, error) {
	switch format {
	case YAML:
	case JSONC:
		// JSON is valid YAML, so both formats share the YAML decoder and its ordered mappings.
		data = jsonc.ToJSON(data)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if err := cfg.expand(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadFile reads and parses the configuration file at path.
func ReadFile(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return cfg, nil
}
