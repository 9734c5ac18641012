package iric

import (
	"errors"

	"github.com/ssargent/gridstore/pkg/mesh"
)

// ErrorCode converts an error into the integer convention of the procedural
// interface: 0 for success and the negated error code otherwise. Errors that
// carry no code count as storage failures.
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var e *mesh.Error
	if errors.As(err, &e) && e.Code != 0 {
		return -int(e.Code)
	}
	return -int(mesh.StorageFailure)
}
