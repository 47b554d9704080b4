package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"framepruner/internal/detection"
)

// Directory is a sorted listing of frame files in one directory.
type Directory struct {
	path  string
	files []string
}

// OpenDirectory lists the regular files in dir, sorted by name. When
// extensions is non-empty only files with a matching extension are kept.
func OpenDirectory(dir string, extensions []string) (*Directory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	d := &Directory{path: dir}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		d.files = append(d.files, entry.Name())
	}
	sort.Strings(d.files)

	return d, nil
}

// Path returns the directory path.
func (d *Directory) Path() string {
	return d.path
}

// Len returns the number of frames.
func (d *Directory) Len() int {
	return len(d.files)
}

// Name returns the file name of frame i.
func (d *Directory) Name(i int) string {
	return d.files[i]
}

// FilePath returns the full path of frame i.
func (d *Directory) FilePath(i int) string {
	return filepath.Join(d.path, d.files[i])
}

// Decode reads frame i as a BGR image.
func (d *Directory) Decode(i int) (gocv.Mat, error) {
	path := d.FilePath(i)
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("%w: cannot read %s", detection.ErrDecode, path)
	}
	return mat, nil
}
