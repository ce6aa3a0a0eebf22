package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteError reports an output file that could not be written. The previous
// content of Path, if any, is left untouched.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// stagedFile is a fully written and synced temporary file waiting to be
// renamed over its destination.
type stagedFile struct {
	path string
	tmp  string
}

// stageFile writes data to a temporary file next to path.
func stageFile(path string, data []byte, perm os.FileMode) (_ *stagedFile, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			err = &WriteError{Path: path, Err: err}
		}
	}()

	if _, err = f.Write(data); err != nil {
		return nil, err
	}
	if err = f.Sync(); err != nil {
		return nil, err
	}
	if err = f.Close(); err != nil {
		return nil, err
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return nil, err
	}
	return &stagedFile{path: path, tmp: tmp}, nil
}

func (s *stagedFile) commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		_ = os.Remove(s.tmp)
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}

func (s *stagedFile) discard() {
	_ = os.Remove(s.tmp)
}

// writeFiles stages every file before renaming any of them, in order.
// A failure while staging leaves all destinations untouched.
func writeFiles(files []outputFile) error {
	staged := make([]*stagedFile, 0, len(files))
	for _, f := range files {
		s, err := stageFile(f.path, f.data, 0644)
		if err != nil {
			for _, s := range staged {
				s.discard()
			}
			return err
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := s.commit(); err != nil {
			for _, rest := range staged[i+1:] {
				rest.discard()
			}
			return err
		}
	}
	return nil
}

type outputFile struct {
	path string
	data []byte
}
