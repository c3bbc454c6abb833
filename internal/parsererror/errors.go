// Package parsererror defines the error types shared by all bank parsers.
//
// The error taxonomy is deliberate: malformed *content* (an email the parser
// cannot or should not extract) is never an error; parsers return a nil
// transaction for it. Errors are reserved for contract violations (a caller
// handed us a record missing required metadata) and for infrastructure
// failures (unreadable files), which must propagate for visibility.
package parsererror

import "fmt"

// EmailParseError signals a violation of the email-record contract: a required
// metadata key (subject, sender address) is absent from the record handed to
// the parser. This is a programmer-error-class failure, not input variance,
// and callers should treat it as a bug to fix rather than routine noise.
type EmailParseError struct {
	Bank string
	Key  string
	Msg  string
}

func (e *EmailParseError) Error() string {
	if e.Bank != "" {
		return fmt.Sprintf("%s: email record missing required key '%s': %s", e.Bank, e.Key, e.Msg)
	}
	return fmt.Sprintf("email record missing required key '%s': %s", e.Key, e.Msg)
}

// ParseError represents a field-level failure while extracting data.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that does not conform to the format
// a specific parser expects.
type InvalidFormatError struct {
	Parser         string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: invalid format: %s. Expected: %s", e.Parser, e.Msg, e.ExpectedFormat)
}
