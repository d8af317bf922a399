package core

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies a failure of a filesystem or tree operation.
// Kinds are usable as errors.Is targets:
//
//	if errors.Is(err, core.NotFound) { ... }
type Kind int

const (
	InvalidPath Kind = iota + 1
	NotFound
	AlreadyExists
	NotADirectory
	IsADirectory
	PermissionDenied
	CreateFailed
	RemoveFailed
	CopyFailed
	UnsupportedOption
)

var kindNames = map[Kind]string{
	InvalidPath:       "invalid path",
	NotFound:          "not found",
	AlreadyExists:     "already exists",
	NotADirectory:     "not a directory",
	IsADirectory:      "is a directory",
	PermissionDenied:  "permission denied",
	CreateFailed:      "create failed",
	RemoveFailed:      "remove failed",
	CopyFailed:        "copy failed",
	UnsupportedOption: "unsupported option",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error implements error so a bare Kind can be returned or matched.
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified failure of a single operation on a single path.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + " " + e.Path + ": " + msg
	} else if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of this error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// NewError returns an *Error of the given kind.
func NewError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Wrap classifies a collaborator error. Well-known causes map to their own
// kind, anything else is reported as fallback. Errors that are already
// classified pass through unchanged. Wrap returns nil for a nil err.
func Wrap(err error, fallback Kind, op, path string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return NewError(Classify(err, fallback), op, path, err)
}

// Classify maps err onto a Kind.
func Classify(err error, fallback Kind) Kind {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	case errors.Is(err, fs.ErrExist):
		return AlreadyExists
	case errors.Is(err, syscall.ENOTDIR):
		return NotADirectory
	case errors.Is(err, syscall.EISDIR):
		return IsADirectory
	case errors.Is(err, fs.ErrInvalid):
		return InvalidPath
	}
	return fallback
}

// KindOf returns the Kind carried by err, or zero if err is unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
