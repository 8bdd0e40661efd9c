package manifest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wokspace/wok/internal/errors"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor selects the encoding from the manifest file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.NewValidationError("unsupported manifest extension").
			WithField("manifest").
			WithValue(filepath.Base(path))
	}
}

// Decode parses a manifest strictly and validates it.
func Decode(r io.Reader, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			if err == io.EOF {
				return nil, errors.NewValidationError("manifest is empty")
			}
			return nil, errors.NewValidationError("malformed manifest").WithCause(err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.NewValidationError("malformed manifest").WithCause(err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode serializes cfg with its fields in declaration order.
func Encode(cfg *Config, format Format) ([]byte, error) {
	out := *cfg
	if out.Repos == nil {
		out.Repos = []Repo{}
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&out); err != nil {
			return nil, fmt.Errorf("failed to encode manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode manifest: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(&out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode manifest: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
}
