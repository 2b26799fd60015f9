package etl

import "fmt"

// ParseError reports a source file whose content does not match the expected
// record shape. It is fatal for the run: the file's batch is rolled back and
// no further files are attempted.
type ParseError struct {
	Path string
	Line int // 0 for single-record files
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
