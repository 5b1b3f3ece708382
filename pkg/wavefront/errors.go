package wavefront

import "fmt"

// ParseError reports an unreadable file or a structurally invalid token.
type ParseError struct {
	File string
	Line int // 0 when the error is not tied to a line
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.File, e.Line, msg)
	}
	return fmt.Sprintf("parse %s: %s", e.File, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError reports a file that could not be created, written, or renamed.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
