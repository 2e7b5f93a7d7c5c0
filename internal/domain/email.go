package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the "you're invited to vote" email.
type InvitationEmailData struct {
	Email           string
	ParticipantName string
	HostName        string
	PartyTitle      string
	Notes           string
	TimeSlots       []time.Time
	VoteURL         string
}

// FinalizedEmailData holds data for the "time locked in" email.
type FinalizedEmailData struct {
	Email            string
	ParticipantName  string
	HostName         string
	PartyTitle       string
	SelectedDatetime time.Time
}

// PartyNotifier emails participants about a party. Participants without an email are skipped.
type PartyNotifier interface {
	NotifyInvited(ctx context.Context, party *WatchParty, participants []*Participant) error
	NotifyFinalized(ctx context.Context, party *WatchParty) error
}

// InviteTokenIssuer signs links that identify a participant of a party.
type InviteTokenIssuer interface {
	Issue(partyID, participantID int64) (string, error)
}

// InviteTokenVerifier validates an invite token and returns the ids it names.
type InviteTokenVerifier interface {
	Verify(token string) (partyID, participantID int64, err error)
}
