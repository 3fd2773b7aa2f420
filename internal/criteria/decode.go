package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a request file.
type Format int

const (
	FormatYAML Format = iota
	FormatCUE
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	default:
		return 0, false
	}
}

// DecodeError reports a request file that could not be read, parsed or
// validated.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode request: %v", e.Err)
	}
	return fmt.Sprintf("decode request %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

var validate = validator.New()

// Decode parses and validates one request.
func Decode(data []byte, format Format) (*Request, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	var req Request
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := dec.Decode(normalizeKeys(raw)); err != nil {
		return nil, &DecodeError{Err: err}
	}

	req.Operator = strings.ToUpper(strings.TrimSpace(req.Operator))
	req.Mode = strings.ToLower(strings.TrimSpace(req.Mode))
	for i := range req.Params {
		req.Params[i].Name = strcase.ToSnake(req.Params[i].Name)
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &req, nil
}

// LoadFile reads a request file. The request name defaults to the file name
// without extension.
func LoadFile(path string) (*Request, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, &DecodeError{Path: path, Err: errors.New("unknown request file extension")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	req, err := Decode(data, format)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	if req.Name == "" {
		req.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return req, nil
}

// FindFiles returns the request files directly inside dir, sorted.
func FindFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromPath(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func decodeRaw(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if raw == nil {
			return nil, errors.New("empty request")
		}
		return raw, nil

	case FormatCUE:
		v := cuecontext.New().CompileBytes(data)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile cue: %w", err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("validate cue: %w", err)
		}
		js, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("export cue: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(js))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read exported cue: %w", err)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("unsupported format %d", format)
	}
}

// normalizeKeys snake-cases structural keys. Param values keep their keys.
func normalizeKeys(v any) any {
	switch m := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key := strcase.ToSnake(k)
			if key == "value" {
				out[key] = val
				continue
			}
			out[key] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(m))
		for i, val := range m {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return v
	}
}
