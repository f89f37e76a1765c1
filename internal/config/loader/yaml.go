package loader

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLLoader reads a YAML configuration file. Decoded values are
// normalized to match TOMLLoader: integers are int64 and every mapping is
// a map[string]any.
type YAMLLoader struct {
	fileLoader
}

// NewYAMLLoader returns a YAML loader for path on the OS file system.
func NewYAMLLoader(path string) *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS(), path)
}

// NewYAMLLoaderWithFS returns a YAML loader reading path from fsys.
func NewYAMLLoaderWithFS(fsys FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fileLoader{fs: fsys, path: path, decode: decodeYAML}}
}

func decodeYAML(source string, data []byte) (map[string]any, *ParseError) {
	var values map[string]any
	err := yaml.Unmarshal(data, &values)
	if err == nil {
		if values == nil {
			return nil, nil
		}
		return normalizeYAML(values).(map[string]any), nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		perr.Message = te.Errors[0]
	}
	return nil, perr
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeYAML(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalizeYAML(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = normalizeYAML(inner)
		}
		return t
	case int:
		return int64(t)
	}
	return v
}
