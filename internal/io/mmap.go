package io

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/mmap"
)

// MappedFile provides memory-mapped read access to a transcript. TeX
// engines rewrite their .log on every run, so the mapping can be swapped
// out from under readers by Refresh.
type MappedFile struct {
	reader  *mmap.ReaderAt
	size    int64
	modTime time.Time
	path    string
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	m := &MappedFile{path: path}
	if err := m.remap(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MappedFile) remap() error {
	info, err := os.Stat(m.path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", m.path)
	}

	reader, err := mmap.Open(m.path)
	if err != nil {
		return err
	}

	if m.reader != nil {
		m.reader.Close()
	}
	m.reader = reader
	m.size = int64(reader.Len())
	m.modTime = info.ModTime()
	return nil
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}

// Size returns the mapped size
func (m *MappedFile) Size() int64 {
	return m.size
}

// ModTime returns the modification time seen at the last (re)map
func (m *MappedFile) ModTime() time.Time {
	return m.modTime
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Close closes the memory mapping
func (m *MappedFile) Close() error {
	return m.reader.Close()
}

// Refresh re-maps the file when its size or modification time changed.
// It reports whether the mapping was replaced. Shrinking counts: a rerun of
// the engine truncates the log before writing it again.
func (m *MappedFile) Refresh() (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	if info.Size() == m.size && info.ModTime().Equal(m.modTime) {
		return false, nil
	}
	if err := m.remap(); err != nil {
		return false, err
	}
	return true, nil
}

// ReadRange reads bytes from start to end
func (m *MappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	_, err := m.reader.ReadAt(buf, start)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Bytes returns a copy of the whole mapping
func (m *MappedFile) Bytes() ([]byte, error) {
	return m.ReadRange(0, m.size)
}

// ReadAll returns the whole mapping as a string, ready for the parser
func (m *MappedFile) ReadAll() (string, error) {
	b, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
