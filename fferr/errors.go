// Package fferr defines the error kinds FluxForge surfaces to callers
// (spec §7) and the CLI exit code each kind maps to (spec §6).
package fferr

import (
	"errors"
	"fmt"
)

// Kind is a sentinel error identifying one of the failure categories a
// migration can hit. Wrap it with fmt.Errorf("...: %w", Kind) to attach
// context; callers recover the kind with errors.Is.
type Kind error

var (
	ErrConnection         Kind = errors.New("connection error")
	ErrIntrospection      Kind = errors.New("introspection error")
	ErrMappingMissing     Kind = errors.New("mapping missing")
	ErrMappingLossy       Kind = errors.New("mapping lossy")
	ErrIncompatibleValue  Kind = errors.New("incompatible value")
	ErrDDL                Kind = errors.New("ddl error")
	ErrDataLossProtection Kind = errors.New("data-loss protection tripped")
	ErrVerifyMismatch     Kind = errors.New("verify mismatch")
	ErrCancelled          Kind = errors.New("cancelled")
)

// ExitCode maps an error (possibly wrapped) to the process exit code from
// spec §6. Unrecognized errors map to 1 (usage/generic error).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConnection):
		return 2
	case errors.Is(err, ErrMappingMissing), errors.Is(err, ErrIntrospection), errors.Is(err, ErrDDL):
		return 3
	case errors.Is(err, ErrDataLossProtection):
		return 4
	case errors.Is(err, ErrIncompatibleValue):
		return 5
	case errors.Is(err, ErrVerifyMismatch):
		return 6
	case errors.Is(err, ErrMappingLossy):
		return 7
	case errors.Is(err, ErrCancelled):
		return 1
	default:
		return 1
	}
}

// Wrap annotates err with kind so errors.Is(result, kind) succeeds while
// preserving the original message via %w.
func Wrap(kind Kind, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
