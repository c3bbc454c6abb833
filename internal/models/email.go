package models

import "time"

// EmailMessage is the minimal view of a fetched email that the bank parsers
// operate on. The mail-fetching collaborator supplies it; any of the fields
// may be empty and parsers must tolerate that without raising.
type EmailMessage struct {
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	BodyHTML   string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}
