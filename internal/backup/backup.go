// Package backup records previous values of variables before wenv
// overwrites them, so a repair can be undone.
package backup

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"wenv/internal/errors"
)

// Record is one saved value.
type Record struct {
	ID        string    `toml:"id" json:"id"`
	Variable  string    `toml:"variable" json:"variable"`
	Value     string    `toml:"value" json:"value"`
	CreatedAt time.Time `toml:"created_at" json:"created_at"`
}

type document struct {
	Backups []Record `toml:"backup"`
}

// Journal is an append-only list of records kept in a TOML file.
type Journal struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	now  func() time.Time
}

func Open(path string) *Journal {
	return OpenFS(afero.NewOsFs(), path)
}

func OpenFS(fsys afero.Fs, path string) *Journal {
	return &Journal{fs: fsys, path: path, now: time.Now}
}

func (j *Journal) Path() string { return j.path }

// Save appends a record for variable and returns it.
func (j *Journal) Save(variable, value string) (Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := j.load()
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:        uuid.NewString(),
		Variable:  variable,
		Value:     value,
		CreatedAt: j.now().UTC(),
	}
	doc.Backups = append(doc.Backups, rec)

	data, err := toml.Marshal(doc)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.ErrBackupWrite, "cannot encode backups")
	}
	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return Record{}, errors.Wrapf(err, errors.ErrBackupWrite, "cannot create %s", filepath.Dir(j.path))
	}
	if err := afero.WriteFile(j.fs, j.path, data, 0600); err != nil {
		return Record{}, errors.Wrapf(err, errors.ErrBackupWrite, "cannot write %s", j.path)
	}
	return rec, nil
}

// List returns all records, newest first. Records saved at the same
// instant keep the reverse of their append order.
func (j *Journal) List() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := j.load()
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(doc.Backups))
	for i, r := range doc.Backups {
		recs[len(recs)-1-i] = r
	}
	sort.SliceStable(recs, func(a, b int) bool { return recs[a].CreatedAt.After(recs[b].CreatedAt) })
	return recs, nil
}

func (j *Journal) Get(id string) (Record, error) {
	recs, err := j.List()
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, errors.Newf(errors.ErrBackupNotFound, "no backup with id %s", id)
}

// Latest returns the newest record for variable.
func (j *Journal) Latest(variable string) (Record, error) {
	recs, err := j.List()
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.Variable == variable {
			return r, nil
		}
	}
	return Record{}, errors.Newf(errors.ErrBackupNotFound, "no backup for %s", variable)
}

func (j *Journal) load() (document, error) {
	var doc document
	data, err := afero.ReadFile(j.fs, j.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, errors.Wrapf(err, errors.ErrStore, "cannot read %s", j.path)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrapf(err, errors.ErrStore, "cannot parse %s", j.path)
	}
	return doc, nil
}
