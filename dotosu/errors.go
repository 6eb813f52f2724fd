package dotosu

import (
	"errors"
	"fmt"
)

// ErrEmptyBeatmap is returned by EndTimeMs when no hit objects were decoded.
var ErrEmptyBeatmap = errors.New("beatmap has no hit objects")

// IOError reports a beatmap source that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read beatmap: %v", e.Err)
	}
	return fmt.Sprintf("read beatmap %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// MalformedLineError reports a line inside a known section that does not have
// the expected record shape. Line is 1-based.
type MalformedLineError struct {
	Line    int
	Text    string
	Section string
	Reason  string
	Err     error
}

func (e *MalformedLineError) Error() string {
	msg := fmt.Sprintf("line %d [%s]: %s: %q", e.Line, e.Section, e.Reason, e.Text)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedLineError) Unwrap() error { return e.Err }
