package plate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/keyplate/pkg/errors"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Formats lists the supported output formats.
func Formats() []string { return []string{FormatJSON, FormatTOML} }

// =============================================================================
// Keys
// =============================================================================

// MarshalKeys serializes placements to pretty-printed JSON.
func MarshalKeys(keys []Key) ([]byte, error) {
	if keys == nil {
		keys = []Key{}
	}
	return json.MarshalIndent(keys, "", "  ")
}

// UnmarshalKeys deserializes placements written by [MarshalKeys].
func UnmarshalKeys(data []byte) ([]Key, error) {
	var keys []Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	return keys, nil
}

// =============================================================================
// Plate
// =============================================================================

// MarshalPlate serializes a Plate to pretty-printed JSON.
func MarshalPlate(p Plate) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalPlate deserializes JSON into a Plate.
// The outline must have positive size.
func UnmarshalPlate(data []byte) (Plate, error) {
	var p Plate
	if err := json.Unmarshal(data, &p); err != nil {
		return Plate{}, fmt.Errorf("unmarshal plate: %w", err)
	}
	if err := checkOutline(p); err != nil {
		return Plate{}, err
	}
	return p, nil
}

func checkOutline(p Plate) error {
	if !(p.Width > 0) || !(p.Height > 0) {
		return fmt.Errorf("plate must have a positive outline, got %gx%g", p.Width, p.Height)
	}
	return nil
}

// MarshalPlateTOML serializes a Plate to TOML.
func MarshalPlateTOML(p Plate) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode plate toml: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode serializes p in the named format.
func Encode(p Plate, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalPlate(p)
	case FormatTOML:
		return MarshalPlateTOML(p)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (use: %s)", format, strings.Join(Formats(), ", "))
	}
}

// FormatForPath picks an output format from a file extension, defaulting to
// JSON.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// WritePlateFile writes p to path in the format implied by its extension.
func WritePlateFile(p Plate, path string) error {
	data, err := Encode(p, FormatForPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlateFile reads a Plate from a JSON or TOML file.
func ReadPlateFile(path string) (Plate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plate{}, fmt.Errorf("read %s: %w", path, err)
	}
	if FormatForPath(path) == FormatTOML {
		var p Plate
		if _, err := toml.Decode(string(data), &p); err != nil {
			return Plate{}, fmt.Errorf("decode plate toml: %w", err)
		}
		if err := checkOutline(p); err != nil {
			return Plate{}, err
		}
		return p, nil
	}
	return UnmarshalPlate(data)
}
