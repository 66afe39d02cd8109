package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"lintconf/internal/config"
)

type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatYAML:
		return "YAML"
	case FormatTOML:
		return "TOML"
	}
	return "unknown"
}

var (
	// ErrDecode marks content that could not be decoded; anything else
	// returned by this package is an I/O failure.
	ErrDecode            = errors.New("decode failed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMultipleDocuments = errors.New("declaration file holds more than one document")
)

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Decode reads every declaration in data. Only YAML may carry more than one;
// an empty input yields one empty declaration.
func Decode(data []byte, format Format, identity string) ([]config.Declaration, error) {
	var docs []map[string]any
	var err error
	switch format {
	case FormatJSON:
		docs, err = decodeJSON(data)
	case FormatYAML:
		docs, err = decodeYAML(data)
	case FormatTOML:
		docs, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%s: %w", identity, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse %s: %w: %w", identity, format, ErrDecode, err)
	}
	if len(docs) == 0 {
		docs = append(docs, nil)
	}
	out := make([]config.Declaration, len(docs))
	for i, doc := range docs {
		id := identity
		if len(docs) > 1 {
			id = fmt.Sprintf("%s#%d", identity, i)
		}
		out[i] = config.Declaration{Identity: id, Fields: doc}
	}
	return out, nil
}

// LoadFile reads a local declaration; its identity is the path as given.
func LoadFile(path string) (config.Declaration, error) {
	decls, err := readFile(path)
	if err != nil {
		return config.Declaration{}, err
	}
	if len(decls) > 1 {
		return config.Declaration{}, fmt.Errorf("%s: %w: %w", path, ErrDecode, ErrMultipleDocuments)
	}
	return decls[0], nil
}

func readFile(path string) ([]config.Declaration, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data, format, path)
}

func decodeJSON(data []byte) ([]map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after top-level value")
	}
	doc, err := topLevel(raw)
	if err != nil {
		return nil, err
	}
	return []map[string]any{doc}, nil
}

func decodeYAML(data []byte) ([]map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for i := 0; ; i++ {
		var raw any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if raw == nil {
			// "---" followed by nothing
			docs = append(docs, nil)
			continue
		}
		doc, err := topLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeTOML(data []byte) ([]map[string]any, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return []map[string]any{normalizeMap(raw)}, nil
}

func topLevel(raw any) (map[string]any, error) {
	switch v := normalize(raw).(type) {
	case map[string]any:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("top-level value must be a mapping, got %T", raw)
	}
}
