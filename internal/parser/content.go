package parser

import (
	"regexp"
	"strings"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// EmailContent is the pre-tokenized view of one email that field extractors
// operate on: the structured label→value mapping pulled from table-like
// markup, plus the plain-text rendering for line scans. Built once per Parse
// call and discarded with it.
type EmailContent struct {
	Msg    models.EmailMessage
	Fields map[string]string
	Text   string
}

// NewEmailContent tokenizes an email body into an EmailContent.
func NewEmailContent(msg models.EmailMessage) *EmailContent {
	return &EmailContent{
		Msg:    msg,
		Fields: textutils.ExtractTableFields(msg.BodyHTML),
		Text:   textutils.HTMLToText(msg.BodyHTML),
	}
}

// Field looks a label up in the structured table mapping, trying each
// synonym in order. Returns "" when no synonym is present.
func (c *EmailContent) Field(labels ...string) string {
	for _, label := range labels {
		if v, ok := c.Fields[textutils.NormalizeKey(label)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Line scans the plain-text rendering for a labeled value.
func (c *EmailContent) Line(labels ...string) string {
	return textutils.FindLabeledValue(c.Text, labels...)
}

// SubjectMatch applies a compiled subject template and returns its first
// capture group, or "".
func (c *EmailContent) SubjectMatch(re *regexp.Regexp) string {
	m := re.FindStringSubmatch(c.Msg.Subject)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Extractor produces one candidate value for a field, or "" when it has none.
type Extractor func() string

// FirstMatch folds an ordered chain of extractors first-success-wins. The
// chain order IS the extraction priority (structured lookup → label scan →
// subject fallback), kept explicit here so each tier stays independently
// testable instead of nesting conditionals in every parser.
func FirstMatch(extractors ...Extractor) string {
	for _, extract := range extractors {
		if v := extract(); v != "" {
			return v
		}
	}
	return ""
}
