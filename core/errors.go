package core

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindParse               ErrorKind = "parse_error"
	KindUnsupportedFileType ErrorKind = "unsupported_file_type"
	KindConfig              ErrorKind = "config_error"
	KindSchemaValidation    ErrorKind = "schema_validation_error"
	KindAgent               ErrorKind = "agent_error"
	KindValidation          ErrorKind = "validation_error"
)

// Error is the error type surfaced by every component of the content agent.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	// Raw holds the model text that failed schema validation.
	Raw string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewParseError(message string, err error) *Error {
	return &Error{Kind: KindParse, Message: message, Err: err}
}

func NewUnsupportedFileType(path string) *Error {
	return &Error{Kind: KindUnsupportedFileType, Message: fmt.Sprintf("unsupported file type %q", path)}
}

func NewConfigError(message string, err error) *Error {
	return &Error{Kind: KindConfig, Message: message, Err: err}
}

func NewSchemaValidationError(message string, raw string, err error) *Error {
	return &Error{Kind: KindSchemaValidation, Message: message, Err: err, Raw: raw}
}

func NewAgentError(message string, err error) *Error {
	return &Error{Kind: KindAgent, Message: message, Err: err}
}

func NewValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsParseError reports malformed input files, including unsupported types.
func IsParseError(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindParse || k == KindUnsupportedFileType)
}

func IsUnsupportedFileType(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnsupportedFileType
}

func IsConfigError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConfig
}

func IsSchemaValidationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindSchemaValidation
}

func IsAgentError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAgent
}

func IsValidationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}
