package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every Diagnostic unwraps to one of these.
var (
	ErrFormat         = errors.New("format error")
	ErrTermination    = errors.New("termination error")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrTruncatedInput = errors.New("truncated input")
	ErrEncodeOverflow = errors.New("encode overflow")
	ErrUnmappableText = errors.New("unmappable text")
)

// Severity orders diagnostics from recoverable to stream-ending.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Code names a specific deviation from the format.
type Code string

const (
	CodeInvalidLeader          Code = "InvalidLeader"
	CodeInvalidDirectoryLength Code = "InvalidDirectoryLength"
	CodeInvalidDirectoryEntry  Code = "InvalidDirectoryEntry"
	CodeDirectoryNotTerminated Code = "DirectoryNotTerminated"
	CodeFieldNotTerminated     Code = "FieldNotTerminated"
	CodeEmptyControlField      Code = "EmptyControlField"
	CodeEmptyDataField         Code = "EmptyDataField"
	CodeMissingDelimiter       Code = "MissingDelimiter"
	CodeUnterminatedSubfield   Code = "UnterminatedSubfield"
	CodeRecordNotTerminated    Code = "RecordNotTerminated"
	CodeRecordLengthMismatch   Code = "RecordLengthMismatch"
	CodeTruncatedRecord        Code = "TruncatedRecord"
	CodeFieldTooLong           Code = "FieldTooLong"
	CodeOffsetOverflow         Code = "OffsetOverflow"
	CodeRecordTooLong          Code = "RecordTooLong"
	CodeUnmappableText         Code = "UnmappableText"
	// CodeReservedByte marks an indicator, subfield code or subfield data holding
	// a delimiter or terminator.
	CodeReservedByte Code = "ReservedByte"
)

// Kind returns the sentinel error class for the code.
func (c Code) Kind() error {
	switch c {
	case CodeInvalidLeader, CodeInvalidDirectoryLength, CodeInvalidDirectoryEntry,
		CodeEmptyControlField, CodeEmptyDataField, CodeMissingDelimiter, CodeReservedByte:
		return ErrFormat
	case CodeDirectoryNotTerminated, CodeFieldNotTerminated, CodeRecordNotTerminated,
		CodeUnterminatedSubfield:
		return ErrTermination
	case CodeRecordLengthMismatch:
		return ErrLengthMismatch
	case CodeTruncatedRecord:
		return ErrTruncatedInput
	case CodeFieldTooLong, CodeOffsetOverflow, CodeRecordTooLong:
		return ErrEncodeOverflow
	case CodeUnmappableText:
		return ErrUnmappableText
	default:
		return ErrFormat
	}
}

// Diagnostic is a single reported problem. Position is a byte offset; the
// codec functions report it relative to their input and the stream reader
// rebases it onto the stream.
type Diagnostic struct {
	Severity      Severity
	Code          Code
	Message       string
	Position      int64
	ControlNumber string
	Tag           string
	Source        string
	Stream        string
}

// NewDiagnostic builds a diagnostic with a formatted message.
func NewDiagnostic(sev Severity, code Code, pos int64, format string, args ...interface{}) *Diagnostic {
	return newDiagnostic(sev, code, pos, format, args...)
}

func newDiagnostic(sev Severity, code Code, pos int64, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(string(d.Code))
	b.WriteString(": ")
	b.WriteString(d.Message)
	fmt.Fprintf(&b, " (position %d", d.Position)
	if d.Tag != "" {
		fmt.Fprintf(&b, ", tag %s", d.Tag)
	}
	if d.ControlNumber != "" {
		fmt.Fprintf(&b, ", control number %s", d.ControlNumber)
	}
	if d.Source != "" {
		fmt.Fprintf(&b, ", source %s", d.Source)
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap exposes the error kind so errors.Is(d, ErrFormat) works.
func (d *Diagnostic) Unwrap() error {
	return d.Code.Kind()
}

// IsFatal reports whether the diagnostic ends decoding.
func (d *Diagnostic) IsFatal() bool {
	return d.Severity == SeverityFatal
}

// AsDiagnostic extracts a *Diagnostic from err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
