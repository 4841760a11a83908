package files

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/gabriel-vasile/mimetype"
)

// FileField is a named multipart file field: either a single file or a list.
type FileField struct {
	Name  string
	Paths []string
	List  bool
}

// File declares a field carrying exactly one file.
func File(name, path string) FileField {
	return FileField{Name: name, Paths: []string{path}}
}

// FileList declares an array field; each path becomes its own part named name[].
func FileList(name string, paths ...string) FileField {
	return FileField{Name: name, Paths: paths, List: true}
}

// partName returns the multipart name for the field's parts.
func (f FileField) partName() string {
	if f.List {
		return f.Name + "[]"
	}
	return f.Name
}

// Part is one chunk of a multipart/form-data body.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Contents    io.ReadCloser
}

// IsFile reports whether the part came from a file rather than a form field.
func (p Part) IsFile() bool {
	return p.FileName != ""
}

// Build turns file fields and inline form fields into an ordered part list.
//
// Files come first in slice order, then form fields sorted by name. Every file
// is opened for reading; if any cannot be opened the parts opened so far are
// closed and a file resolution error is returned.
func Build(fields []FileField, form map[string]string) ([]Part, error) {
	parts := make([]Part, 0, len(fields)+len(form))

	for _, field := range fields {
		for _, path := range field.Paths {
			part, err := openPart(field.partName(), path)
			if err != nil {
				Close(parts)
				return nil, err
			}
			parts = append(parts, part)
		}
	}

	for _, name := range client.SortedKeys(form) {
		parts = append(parts, Part{
			Name:     name,
			Contents: io.NopCloser(strings.NewReader(form[name])),
		})
	}

	return parts, nil
}

func openPart(name, path string) (Part, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Part{}, client.FileResolutionError(path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Part{}, client.FileResolutionError(path, err)
	}

	return Part{
		Name:        name,
		FileName:    filepath.Base(path),
		ContentType: mtype.String(),
		Contents:    f,
	}, nil
}

// Close closes the contents of every part, ignoring errors.
func Close(parts []Part) {
	for _, p := range parts {
		if p.Contents != nil {
			_ = p.Contents.Close()
		}
	}
}

// Names lists the part names in order.
func Names(parts []Part) []string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return names
}
