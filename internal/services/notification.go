package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"moviemate/internal/domain"
	"moviemate/internal/metrics"
)

type partyNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	invites  domain.InviteTokenIssuer
	baseURL  string
	logger   *slog.Logger
}

// NewPartyNotifier returns a PartyNotifier that emails participants using the
// "invitation" and "finalized" templates. Invitation links point at baseURL.
func NewPartyNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, invites domain.InviteTokenIssuer, baseURL string, logger *slog.Logger) domain.PartyNotifier {
	return &partyNotifier{
		mailer:   mailer,
		renderer: renderer,
		invites:  invites,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// NotifyInvited sends each participant with an email their personal voting link.
// It keeps going past individual failures and returns them joined.
func (n *partyNotifier) NotifyInvited(ctx context.Context, party *domain.WatchParty, participants []*domain.Participant) error {
	slots := make([]time.Time, 0, len(party.TimeSlots))
	for _, s := range party.TimeSlots {
		slots = append(slots, s.ProposedDatetime)
	}
	var errs []error
	for _, p := range participants {
		if p.Email == nil {
			continue
		}
		voteURL, err := n.voteURL(party.ID, p.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		data := &domain.InvitationEmailData{
			Email:           *p.Email,
			ParticipantName: p.Name,
			HostName:        party.HostName,
			PartyTitle:      party.Title,
			Notes:           deref(party.Notes),
			TimeSlots:       slots,
			VoteURL:         voteURL,
		}
		if err := n.send(ctx, "invitation", data.Email, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyFinalized tells every participant with an email which time was chosen.
func (n *partyNotifier) NotifyFinalized(ctx context.Context, party *domain.WatchParty) error {
	if !party.IsFinalized || party.SelectedDatetime == nil {
		return fmt.Errorf("watch party %d is not finalized", party.ID)
	}
	var errs []error
	for _, p := range party.Participants {
		if p.Email == nil {
			continue
		}
		data := &domain.FinalizedEmailData{
			Email:            *p.Email,
			ParticipantName:  p.Name,
			HostName:         party.HostName,
			PartyTitle:       party.Title,
			SelectedDatetime: *party.SelectedDatetime,
		}
		if err := n.send(ctx, "finalized", data.Email, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *partyNotifier) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := n.renderer.Render(template, data)
	if err != nil {
		err = fmt.Errorf("failed to render %s template: %w", template, err)
		metrics.RecordEmail(template, err)
		return err
	}
	if err := n.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		err = fmt.Errorf("failed to send %s email to %s: %w", template, to, err)
		metrics.RecordEmail(template, err)
		return err
	}
	metrics.RecordEmail(template, nil)
	n.logger.DebugContext(ctx, "email sent", "template", template, "to", to)
	return nil
}

func (n *partyNotifier) voteURL(partyID, participantID int64) (string, error) {
	if n.invites == nil {
		return fmt.Sprintf("%s/watch-parties/%d", n.baseURL, partyID), nil
	}
	token, err := n.invites.Issue(partyID, participantID)
	if err != nil {
		return "", fmt.Errorf("issue invite token: %w", err)
	}
	return n.baseURL + "/watch-parties/invite/" + token, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
