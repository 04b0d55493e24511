// Package xerrors attaches call-site information to errors so the logger
// can report where a failure was created and each place it was wrapped.
//
// New, Newf and WithStack record a full stack. Wrap and Wrapf record only
// the caller's program counter. All wrappers keep errors.Is and errors.As
// working on the underlying error.
package xerrors

import (
	"errors"
	"fmt"
	"runtime"
)

const maxDepth = 64

type stacked struct {
	err error
	pcs []uintptr
}

func (s *stacked) Error() string { return s.err.Error() }

func (s *stacked) Unwrap() error { return s.err }

func (s *stacked) StackPCs() []uintptr { return s.pcs }

type wrapped struct {
	err error
	msg string
	pc  uintptr
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }

func (w *wrapped) Unwrap() error { return w.err }

func (w *wrapped) PC() uintptr { return w.pc }

// stack captures the caller of the exported function that called it.
func stack(err error) error {
	pcs := make([]uintptr, maxDepth)
	// runtime.Callers, stack, exported func
	n := runtime.Callers(3, pcs)
	return &stacked{err: err, pcs: pcs[:n]}
}

func caller() uintptr {
	var pcs [1]uintptr
	// runtime.Callers, caller, exported func
	if runtime.Callers(3, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

func New(msg string) error {
	return stack(errors.New(msg))
}

// Newf formats like fmt.Errorf, so %w is honoured.
func Newf(format string, args ...any) error {
	return stack(fmt.Errorf(format, args...))
}

// WithStack records the current stack on err. Nil stays nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return stack(err)
}

// EnsureTrace is WithStack unless err already carries a stack.
func EnsureTrace(err error) error {
	if err == nil {
		return nil
	}
	if HasStack(err) {
		return err
	}
	return stack(err)
}

// HasStack reports whether any error in the chain recorded a stack.
func HasStack(err error) bool {
	var hs interface{ StackPCs() []uintptr }
	return errors.As(err, &hs) && len(hs.StackPCs()) > 0
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: msg, pc: caller()}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: fmt.Sprintf(format, args...), pc: caller()}
}
