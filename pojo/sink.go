package pojo

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/java"
)

// Sink creates one output unit per generated class.
type Sink interface {
	Create(name java.ClassName) (io.WriteCloser, error)
}

// Unit is a generated compilation unit held in memory.
type Unit struct {
	Name java.ClassName
	bytes.Buffer
	closed bool
}

func (u *Unit) Close() error {
	if u.closed {
		return errors.Errorf("%s: already closed", u.Name)
	}
	u.closed = true
	return nil
}

// MemorySink keeps every unit in memory in creation order.
type MemorySink struct {
	units []*Unit
	index map[string]*Unit
}

func NewMemorySink() *MemorySink {
	return &MemorySink{index: make(map[string]*Unit)}
}

func (s *MemorySink) Create(name java.ClassName) (io.WriteCloser, error) {
	if s.index == nil {
		s.index = make(map[string]*Unit)
	}
	key := name.Qualified()
	if _, ok := s.index[key]; ok {
		return nil, errors.Errorf("unit %s already exists", key)
	}
	u := &Unit{Name: name}
	s.units = append(s.units, u)
	s.index[key] = u
	return u, nil
}

func (s *MemorySink) Units() []*Unit { return s.units }

func (s *MemorySink) Unit(name java.ClassName) (*Unit, bool) {
	u, ok := s.index[name.Qualified()]
	return u, ok
}

// DirSink writes units into a source tree rooted at Dir.
type DirSink struct {
	Dir string
	// Force allows existing files to be overwritten.
	Force bool
}

// Path returns the file a class is written to.
func (s *DirSink) Path(name java.ClassName) string {
	parts := append([]string{s.Dir}, strings.Split(name.Package, ".")...)
	parts = append(parts, name.Raw+".java")
	return filepath.Join(parts...)
}

func (s *DirSink) Create(name java.ClassName) (io.WriteCloser, error) {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WithStack(err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !s.Force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Errorf("%s already exists, use force to overwrite", path)
		}
		return nil, errors.WithStack(err)
	}
	return f, nil
}
