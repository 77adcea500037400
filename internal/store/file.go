package store

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"wenv/internal/errors"
	"wenv/internal/logging"
	"wenv/internal/model"
)

// File keeps variables in a flat TOML document of name = "value" pairs.
// Only string values are supported; anything else is reported as
// UNSUPPORTED_VALUE_TYPE rather than coerced.
type File struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// OpenFile opens a TOML store on the real filesystem.
func OpenFile(path string) (*File, error) {
	return OpenFileFS(afero.NewOsFs(), path)
}

// OpenFileFS opens a TOML store on fsys. A missing file is an empty store;
// it is created on the first Set.
func OpenFileFS(fsys afero.Fs, path string) (*File, error) {
	info, err := fsys.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, errors.Newf(errors.ErrStoreUnavailable, "%s is a directory", path)
	case err != nil && !stderrors.Is(err, fs.ErrNotExist):
		return nil, storeErr(err, "cannot open %s", path)
	}

	logger := logging.GetLogger("store")
	logger.Debug().Str("path", path).Bool("exists", err == nil).Msg("Opened file store")
	return &File{fs: fsys, path: path}, nil
}

func (f *File) Name() string { return "file:" + f.path }

func (f *File) Close() error { return nil }

func (f *File) load() (map[string]interface{}, error) {
	doc := make(map[string]interface{})
	data, err := afero.ReadFile(f.fs, f.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, storeErr(err, "cannot read %s", f.path)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreUnavailable, "cannot parse %s", f.path)
	}
	return doc, nil
}

func (f *File) Get(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", err
	}
	raw, ok := doc[name]
	if !ok {
		return "", notFound(name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", unsupported(name, raw)
	}
	return s, nil
}

// Enumerate lists every variable sorted by name. Values of unsupported types
// are listed with Unsupported set instead of failing the whole listing.
func (f *File) Enumerate() ([]model.Variable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	vars := make([]model.Variable, 0, len(doc))
	for name, raw := range doc {
		v := model.Variable{Name: name, Kind: kindOf(raw)}
		if s, ok := raw.(string); ok {
			v.Value = s
		} else {
			v.Unsupported = true
		}
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars, nil
}

// Set rewrites the whole document through a temp file and a rename, so a
// failed write leaves the previous file intact.
func (f *File) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[name] = value

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrStore, "cannot encode store")
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return storeErr(err, "cannot create %s", dir)
	}
	tmp, err := afero.TempFile(f.fs, dir, ".wenv-*.toml")
	if err != nil {
		return storeErr(err, "cannot write %s", f.path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.fs.Remove(tmpName)
		return storeErr(err, "cannot write %s", f.path)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpName)
		return storeErr(err, "cannot write %s", f.path)
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		f.fs.Remove(tmpName)
		return storeErr(err, "cannot replace %s", f.path)
	}

	logger := logging.GetLogger("store")
	logger.Info().Str("name", name).Str("path", f.path).Msg("Variable written")
	return nil
}

func storeErr(err error, format string, args ...interface{}) error {
	if stderrors.Is(err, fs.ErrPermission) || os.IsPermission(err) {
		return errors.Wrapf(err, errors.ErrPermissionDenied, format, args...)
	}
	return errors.Wrapf(err, errors.ErrStore, format, args...)
}

func unsupported(name string, raw interface{}) error {
	return errors.Newf(errors.ErrUnsupportedValueType, "variable %s has unsupported type %s", name, kindOf(raw)).
		WithDetail("name", name).
		WithDetail("kind", kindOf(raw))
}

func kindOf(raw interface{}) string {
	switch raw.(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "table"
	}
	return fmt.Sprintf("%T", raw)
}
