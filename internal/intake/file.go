// Package intake classifies user-selected files and reads them for upload.
package intake

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxFileBytes matches the backend's upload limit.
const MaxFileBytes = 16 * 1024 * 1024

// File is a user-selected file: a local path or an in-memory upload.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile wraps a path on disk.
func LocalFile(path string) File {
	return localFile{path: path}
}

func (f localFile) Name() string { return filepath.Base(f.path) }

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type memFile struct {
	name string
	data []byte
}

// MemFile wraps bytes received from a browser upload.
func MemFile(name string, data []byte) File {
	return memFile{name: filepath.Base(name), data: data}
}

func (f memFile) Name() string { return f.name }

func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// ReadAll reads a file, refusing anything over MaxFileBytes.
func ReadAll(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", f.Name(), MaxFileBytes/(1024*1024))
	}
	return data, nil
}

// ReadBase64 returns the file's bytes as a bare standard base64 payload,
// without any data-URL prefix.
func ReadBase64(f File) (string, error) {
	data, err := ReadAll(f)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
