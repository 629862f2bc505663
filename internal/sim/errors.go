package sim

import (
	"fmt"

	"github.com/juju/errors"
)

// ErrDiverged is returned by a model whose state became NaN or Inf.
const ErrDiverged = errors.ConstError("sim: state diverged (NaN or Inf detected)")

// UnknownFieldError reports access to an undeclared field name.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

func (e *UnknownFieldError) Unwrap() error { return errors.NotFound }

// DuplicateFieldError reports two models of one list declaring the same
// field name. Index is the position of the second declaring model.
type DuplicateFieldError struct {
	Name  string
	Index int
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %q declared again by model %d", e.Name, e.Index)
}

func (e *DuplicateFieldError) Unwrap() error { return errors.AlreadyExists }

// FieldTypeError reports a value or reference whose type does not match
// the kind of the field.
type FieldTypeError struct {
	Name string
	Kind Kind
	Got  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q is %s, got %s", e.Name, e.Kind, e.Got)
}

func (e *FieldTypeError) Unwrap() error { return errors.NotValid }

// StepError wraps a model failure with the tick and list position it
// occurred at.
type StepError struct {
	Tick  uint64
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d, model %d: %v", e.Tick, e.Index, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
