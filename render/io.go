package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/facet"
)

// Format is a mesh file format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatSTL
	FormatOBJ
	FormatOBJA
)

// ErrUnknownFormat is returned for file names whose extension is not a supported mesh format.
var ErrUnknownFormat = errors.New("unknown mesh file format")

// FormatOf returns the mesh format implied by a file name's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return FormatSTL
	case ".obj":
		return FormatOBJ
	case ".obja":
		return FormatOBJA
	}
	return FormatUnknown
}

func (f Format) String() string {
	switch f {
	case FormatSTL:
		return "stl"
	case FormatOBJ:
		return "obj"
	case FormatOBJA:
		return "obja"
	}
	return "unknown"
}

// Read decodes a mesh of format f from r.
func Read(r io.Reader, f Format) (*facet.Mesh, error) {
	switch f {
	case FormatSTL:
		return ReadSTL(r)
	case FormatOBJ, FormatOBJA:
		return ReadOBJ(r)
	}
	return nil, ErrUnknownFormat
}

// Write encodes m in format f to w.
func Write(w io.Writer, m *facet.Mesh, f Format) error {
	switch f {
	case FormatSTL:
		_, err := WriteBinarySTL(w, m)
		return err
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatOBJA:
		return WriteOBJA(w, m)
	}
	return ErrUnknownFormat
}

// CreateFile writes m to a new file at path in the format given by its extension.
func CreateFile(path string, m *facet.Mesh) error {
	f := FormatOf(path)
	if f == FormatUnknown {
		return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fp)
	err = Write(bw, m, f)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}
