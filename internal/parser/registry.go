package parser

import (
	"strings"
	"time"

	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/parsererror"
)

// Registry routes emails to bank parsers by sender-domain pattern. The set of
// banks is closed and registered at construction time; there is no runtime
// duck-typing.
type Registry struct {
	entries []registryEntry
	logger  logging.Logger
}

type registryEntry struct {
	domains []string
	parser  EmailParser
}

// NewRegistry creates an empty parser registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Registry{logger: logger}
}

// Register associates a parser with the sender domains it handles.
func (r *Registry) Register(p EmailParser, domains ...string) {
	r.entries = append(r.entries, registryEntry{domains: domains, parser: p})
}

// ParserFor returns the parser registered for the sender address, matching on
// domain suffix.
func (r *Registry) ParserFor(sender string) (EmailParser, bool) {
	sender = strings.ToLower(strings.TrimSpace(sender))
	at := strings.LastIndex(sender, "@")
	if at < 0 {
		return nil, false
	}
	domain := sender[at+1:]

	for _, e := range r.entries {
		for _, d := range e.domains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return e.parser, true
			}
		}
	}
	return nil, false
}

// Parse routes an email to the parser registered for its sender. An email
// from an unregistered sender is not an error; it is simply not a bank
// notification, and yields (nil, nil) like any other non-transactional mail.
func (r *Registry) Parse(msg models.EmailMessage) (*models.ParsedTransaction, error) {
	p, ok := r.ParserFor(msg.From)
	if !ok {
		r.logger.Debug("No parser registered for sender",
			logging.Field{Key: "from", Value: msg.From})
		return nil, nil
	}

	tx, err := p.Parse(msg)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}
	if tx.Banco == "" {
		tx.Banco = p.BankName()
	}
	return tx, nil
}

// ParseRecord validates the raw email-record contract and routes the message.
//
// The record is the shape the mail-fetching collaborator supplies: "subject",
// "from.emailAddress.address", "body.content" (HTML) and "receivedDateTime"
// (ISO-8601). A record missing the subject or sender keys violates the call
// contract and raises parsererror.EmailParseError; that is a bug in the
// caller, never routine input variance. Empty values and a missing body or
// timestamp are tolerated content variance.
func (r *Registry) ParseRecord(record map[string]any) (*models.ParsedTransaction, error) {
	subject, ok := stringAt(record, "subject")
	if !ok {
		return nil, &parsererror.EmailParseError{Key: "subject", Msg: "email record has no subject key"}
	}

	sender, ok := stringAt(record, "from", "emailAddress", "address")
	if !ok {
		return nil, &parsererror.EmailParseError{Key: "from.emailAddress.address", Msg: "email record has no sender address"}
	}

	body, _ := stringAt(record, "body", "content")

	var received time.Time
	if raw, ok := stringAt(record, "receivedDateTime"); ok && raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			received = t
		} else {
			r.logger.Warn("Unparseable receivedDateTime on email record",
				logging.Field{Key: "value", Value: raw})
		}
	}

	return r.Parse(models.EmailMessage{
		Subject:    subject,
		From:       sender,
		BodyHTML:   body,
		ReceivedAt: received,
	})
}

// stringAt walks a nested string-keyed map along path and returns the string
// value at the leaf. The second return is false when any key on the path is
// absent.
func stringAt(m map[string]any, path ...string) (string, bool) {
	var current any = m
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = node[key]
		if !ok {
			return "", false
		}
	}
	s, ok := current.(string)
	if !ok {
		return "", false
	}
	return s, true
}
