package bmff

import (
	"errors"
	"fmt"
)

// ErrFormat matches every structural violation found while parsing a
// container. Use errors.Is(err, ErrFormat) to tell format errors apart from
// I/O failures.
var ErrFormat = errors.New("format error")

// FormatError reports a violated structural assumption together with the
// box path at which it was found.
type FormatError struct {
	Path string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "format error: " + e.Msg
	}
	return fmt.Sprintf("format error in %s: %s", e.Path, e.Msg)
}

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Errorf returns a FormatError for the given box path.
func Errorf(path string, format string, args ...interface{}) error {
	return &FormatError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Within prefixes the path of a FormatError with parent. Other errors are
// returned unchanged.
func Within(parent string, err error) error {
	var fe *FormatError
	if !errors.As(err, &fe) {
		return err
	}
	path := parent
	if fe.Path != "" {
		path = parent + "/" + fe.Path
	}
	return &FormatError{Path: path, Msg: fe.Msg}
}
