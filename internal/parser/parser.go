// Package parser provides the contract every bank email parser satisfies,
// the shared extraction machinery, and the registry that routes an email to
// the parser responsible for its sender.
package parser

import (
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

// EmailParser is the contract every bank parser implements.
//
// Parse never returns an error for malformed-but-well-typed content: junk
// mail, affiliation notices, and transactional mail in an unseen format all
// yield (nil, nil): "not a transaction I can or should extract". Giving up
// gracefully and leaving the email for human review is a valid outcome;
// guessing is not. Errors are reserved for contract violations
// (parsererror.EmailParseError), which must propagate to the caller.
type EmailParser interface {
	// BankName returns the constant bank identifier used for routing and logging.
	BankName() string

	// Parse extracts a transaction from an email, or nil when the email is
	// non-transactional or in a format outside the known corpus.
	Parse(msg models.EmailMessage) (*models.ParsedTransaction, error)
}

// BaseParser provides the common functionality bank parsers embed: a
// configurable structured logger. Parsers hold no other state beyond their
// compiled regex and keyword tables, built once at construction and read-only
// thereafter, so concurrent Parse calls are safe without locking.
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser ready for embedding. A nil logger falls
// back to the process default.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return BaseParser{logger: logger}
}

// SetLogger replaces the parser's logger.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Logger returns the parser's logger.
func (b *BaseParser) Logger() logging.Logger {
	return b.logger
}
