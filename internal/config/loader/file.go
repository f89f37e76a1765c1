package loader

import (
	"fmt"
	"io"
)

// decodeFunc turns raw file contents into a configuration map. Errors it
// returns are wrapped into a *ParseError by the caller.
type decodeFunc func(source string, data []byte) (map[string]any, *ParseError)

// fileLoader is the shared body of the file-backed loaders.
type fileLoader struct {
	fs     FileSystem
	path   string
	decode decodeFunc
}

// Load reads and decodes the configured path. A missing file yields nil, nil.
func (l *fileLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.decodeBytes(l.path, data)
}

// LoadFromReader decodes everything read from r.
func (l *fileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.decodeBytes("<reader>", data)
}

func (l *fileLoader) decodeBytes(source string, data []byte) (map[string]any, error) {
	values, perr := l.decode(source, data)
	if perr != nil {
		return nil, perr
	}
	return values, nil
}
