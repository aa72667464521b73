package errors

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
)

// Category groups error codes by where they surface.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryRuntime Category = "runtime"
	CategoryCLI     Category = "cli"
)

// Location points into a file the user wrote, usually floaties.json.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded error with an optional file location and a fix hint.
type Error struct {
	// Code is the registry key, e.g. "F101".
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	Location *Location

	// Context holds the lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows a correct value or command.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the error at file:line:column and loads the
// surrounding lines from disk.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithOffset points the error at a byte offset into data, as reported by
// json.SyntaxError and json.UnmarshalTypeError.
func (e *Error) WithOffset(file string, data []byte, offset int64) *Error {
	if offset < 0 || offset > int64(len(data)) {
		return e
	}
	head := data[:offset]
	line := bytes.Count(head, []byte("\n")) + 1
	column := int(offset)
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		column = int(offset) - i - 1
	}
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = contextLines(bytes.NewReader(data), line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *Error) WithExample(ex string) *Error {
	e.Example = ex
	return e
}

// WithDetail replaces the registry detail.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()
	return contextLines(file, targetLine, contextSize)
}

func contextLines(r io.Reader, targetLine, contextSize int) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New creates an Error from a registered code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is an *Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if stderrors.As(err, &fe) {
		return fe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code string) bool {
	var fe *Error
	for err != nil {
		if !stderrors.As(err, &fe) {
			return false
		}
		if fe.Code == code {
			return true
		}
		err = fe.Wrapped
	}
	return false
}
