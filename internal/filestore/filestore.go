package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrNotExist is an error value which may be tested against to determine
	// whether a method invocation from a Store instance failed due to being
	// called on a file which did not exist.
	ErrNotExist = fs.ErrNotExist

	// ErrReadOnly is an error returned when attempting to write a file in a
	// read-only store.
	ErrReadOnly = errors.New("read only file store")

	// ErrInvalidName is returned for names that are not valid paths relative
	// to the root of the store (absolute paths, ".." elements, empty names).
	ErrInvalidName = errors.New("invalid file name")

	// ErrNotRegular is returned when reading a name which exists in the store
	// but is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
)

// Store is an interface abstracting the file system served by the server.
//
// Store instances must be safe to use concurrently from multiple goroutines.
type Store interface {
	// Writes a file with the given name, creating it or replacing its
	// content with data.
	//
	// Writes are atomic, concurrent readers observe either the previous
	// content or the new one, and the last writer wins.
	WriteFile(ctx context.Context, name string, data io.Reader) error

	// Reads the full content of a regular file.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// Retrieves information about a file in the store.
	StatFile(ctx context.Context, name string) (Info, error)
}

// Info is the set of meta data associated with a file in a store.
type Info struct {
	Name    string
	Size    int64
	Regular bool
}

// EmptyStore returns a Store instance representing an empty, read-only file
// store.
func EmptyStore() Store { return emptyStore{} }

type emptyStore struct{}

func (emptyStore) WriteFile(ctx context.Context, name string, data io.Reader) error {
	return ErrReadOnly
}

func (emptyStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return nil, ErrNotExist
}

func (emptyStore) StatFile(ctx context.Context, name string) (Info, error) {
	return Info{}, ErrNotExist
}

// DirStore constructs a file store from a directory entry at the given path.
//
// The function converts the directory location to an absolute path to decouple
// the store from a change of the current working directory.
//
// The directory is not created if it does not exist.
func DirStore(path string) (Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return dirStore(absPath), nil
}

type dirStore string

func (store dirStore) WriteFile(ctx context.Context, name string, data io.Reader) error {
	filePath, err := store.joinPath(name)
	if err != nil {
		return err
	}

	dirPath, fileName := filepath.Split(filePath)
	if err := os.MkdirAll(dirPath, 0777); err != nil {
		return err
	}

	file, err := os.CreateTemp(dirPath, "."+fileName+".*")
	if err != nil {
		return err
	}
	defer file.Close()
	tmpPath := file.Name()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(tmpPath)
		return err
	}
	// CreateTemp uses mode 0600, files written through the store are
	// meant to be served back so they get the usual permissions.
	if err := file.Chmod(0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (store dirStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	path, err := store.joinPath(name)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRegular)
	}
	return os.ReadFile(path)
}

func (store dirStore) StatFile(ctx context.Context, name string) (Info, error) {
	path, err := store.joinPath(name)
	if err != nil {
		return Info{}, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Name:    name,
		Size:    stat.Size(),
		Regular: stat.Mode().IsRegular(),
	}
	return info, nil
}

func (store dirStore) joinPath(name string) (string, error) {
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(string(store), filepath.FromSlash(name)), nil
}
