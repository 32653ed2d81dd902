package dataset

import (
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/swot-confluence/offline/pkg/errors"
)

// Store locates and opens datasets. Existence checks and directory scans go
// through an afero filesystem; decoding goes through a Decoder.
type Store struct {
	fs      afero.Fs
	decoder Decoder
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFs sets the filesystem used for existence checks and scans.
func WithFs(fs afero.Fs) StoreOption {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithDecoder sets the decoder used to open files.
func WithDecoder(d Decoder) StoreOption {
	return func(s *Store) {
		if d != nil {
			s.decoder = d
		}
	}
}

// NewStore returns a Store reading NetCDF files from the OS filesystem
// unless overridden by options.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		fs:      afero.NewOsFs(),
		decoder: NetCDF{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the store's filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Exists reports whether path names an existing regular file.
func (s *Store) Exists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Open decodes the file at path. A missing file is a SourceNotFound error.
func (s *Store) Open(path string) (Dataset, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSourceNotFoundError(path, err)
		}
		return nil, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return nil, errors.NewSourceNotFoundError(path, nil)
	}
	return s.decoder.Decode(path)
}

// Glob returns the sorted files matching pattern.
func (s *Store) Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(s.fs, pattern)
	if err != nil {
		return nil, errors.WrapIO("glob", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadDir lists the names of regular files in dir, sorted.
func (s *Store) ReadDir(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSourceNotFoundError(dir, err)
		}
		return nil, errors.WrapIO("scan", dir, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
