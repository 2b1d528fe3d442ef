package pojo

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSchemaShape classifies schemas that cannot be turned into Java.
	ErrSchemaShape = errors.New("unsupported schema")
	// ErrConfig classifies invalid generator configuration.
	ErrConfig = errors.New("invalid configuration")
)

// CodeGenerationError is returned for any failure while generating the type
// at Type.
type CodeGenerationError struct {
	Type string
	Err  error
}

func (e *CodeGenerationError) Error() string {
	return e.Type + ": " + e.Err.Error()
}

func (e *CodeGenerationError) Unwrap() error { return e.Err }

func shapeError(uri, format string, args ...any) error {
	return &CodeGenerationError{Type: uri, Err: errors.Wrap(ErrSchemaShape, fmt.Sprintf(format, args...))}
}

func configError(uri, format string, args ...any) error {
	return &CodeGenerationError{Type: uri, Err: errors.Wrap(ErrConfig, fmt.Sprintf(format, args...))}
}

// wrapError attaches uri to err unless err already names a type.
func wrapError(uri string, err error) error {
	var cge *CodeGenerationError
	if errors.As(err, &cge) {
		return err
	}
	return &CodeGenerationError{Type: uri, Err: err}
}
