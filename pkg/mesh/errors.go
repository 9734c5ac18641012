package mesh

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/ssargent/gridstore/pkg/codec"
	"github.com/ssargent/gridstore/pkg/store"
)

// Code classifies a mesh error
type Code int

const (
	_ Code = iota
	InvalidFile
	InvalidZone
	InvalidGridType
	InvalidDimension
	SizeMismatch
	NotFound
	StepOutOfRange
	StorageFailure
	DuplicateName
)

func (c Code) String() string {
	switch c {
	case InvalidFile:
		return "invalid file"
	case InvalidZone:
		return "invalid zone"
	case InvalidGridType:
		return "invalid grid type"
	case InvalidDimension:
		return "invalid dimension"
	case SizeMismatch:
		return "size mismatch"
	case NotFound:
		return "not found"
	case StepOutOfRange:
		return "step out of range"
	case StorageFailure:
		return "storage failure"
	case DuplicateName:
		return "duplicate name"
	default:
		return "no error"
	}
}

// Error is returned by every failing mesh operation. Err carries the
// substrate cause for storage failures.
type Error struct {
	Code Code
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Code.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels, one per code
var (
	ErrInvalidFile      = &Error{Code: InvalidFile}
	ErrInvalidZone      = &Error{Code: InvalidZone}
	ErrInvalidGridType  = &Error{Code: InvalidGridType}
	ErrInvalidDimension = &Error{Code: InvalidDimension}
	ErrSizeMismatch     = &Error{Code: SizeMismatch}
	ErrNotFound         = &Error{Code: NotFound}
	ErrStepOutOfRange   = &Error{Code: StepOutOfRange}
	ErrStorageFailure   = &Error{Code: StorageFailure}
	ErrDuplicateName    = &Error{Code: DuplicateName}
)

// CodeOf returns the code carried by err, or 0 when err is nil or not a
// mesh error
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

func newError(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// storageError classifies an error coming back from the substrate.
// Missing records become NotFound and payload shape problems SizeMismatch;
// everything else is a StorageFailure wrapping the cause.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrKeyNotFound), errors.Is(err, fs.ErrNotExist):
		return &Error{Code: NotFound, Op: op, Err: err}
	case errors.Is(err, codec.ErrDTypeMismatch), errors.Is(err, codec.ErrLengthMismatch):
		return &Error{Code: SizeMismatch, Op: op, Err: err}
	default:
		return &Error{Code: StorageFailure, Op: op, Err: err}
	}
}
