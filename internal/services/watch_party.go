package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"moviemate/internal/domain"
	"moviemate/internal/metrics"
	"moviemate/internal/validation"
)

const (
	maxTitleLength = 255
	maxNameLength  = 100
	maxEmailLength = 255
)

type watchPartyService struct {
	repo           domain.WatchPartyRepository
	notifier       domain.PartyNotifier
	publisher      domain.EventPublisher
	invites        domain.InviteTokenVerifier
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewWatchPartyService wires the party lifecycle. notifier and publisher may be nil.
func NewWatchPartyService(
	repo domain.WatchPartyRepository,
	notifier domain.PartyNotifier,
	publisher domain.EventPublisher,
	invites domain.InviteTokenVerifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.WatchPartyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &watchPartyService{
		repo:           repo,
		notifier:       notifier,
		publisher:      publisher,
		invites:        invites,
		logger:         logger,
		contextTimeout: timeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *watchPartyService) CreateParty(ctx context.Context, in domain.CreatePartyInput) (*domain.WatchParty, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var problems []string
	if in.MovieID <= 0 {
		problems = append(problems, "movie_id must be a positive integer")
	}
	title, p := requiredText("title", in.Title, maxTitleLength)
	problems = append(problems, p...)
	host, p := requiredText("host_name", in.HostName, maxNameLength)
	problems = append(problems, p...)

	if len(in.TimeSlots) == 0 {
		problems = append(problems, "time_slots must contain at least one datetime")
	}
	for i, at := range in.TimeSlots {
		if at.IsZero() {
			problems = append(problems, fmt.Sprintf("time_slots[%d] is not a valid datetime", i))
		}
	}

	now := s.now()
	var participants []*domain.Participant
	for i, pin := range in.Participants {
		name := strings.TrimSpace(pin.Name)
		if name == "" {
			continue
		}
		pt, p := newParticipant(fmt.Sprintf("participants[%d]", i), name, pin.Email, now)
		problems = append(problems, p...)
		participants = append(participants, pt)
	}
	if len(participants) == 0 {
		problems = append(problems, "participants must contain at least one named participant")
	}
	if err := domain.NewValidationError(problems...); err != nil {
		return nil, err
	}

	party := domain.NewWatchParty(in.MovieID, title, host, trimOptional(in.Notes), in.TimeSlots, participants, now)
	if err := s.repo.Create(ctx, party); err != nil {
		return nil, fmt.Errorf("create watch party: %w", err)
	}
	metrics.PartiesCreated.Inc()

	s.publish(ctx, domain.EventPartyCreated, party, party)
	s.notifyInvited(ctx, party, party.Participants)
	return party, nil
}

func (s *watchPartyService) ListParties(ctx context.Context, params domain.PaginationParams) ([]*domain.WatchParty, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	parties, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list watch parties: %w", err)
	}
	if parties == nil {
		parties = []*domain.WatchParty{}
	}
	return parties, total, nil
}

func (s *watchPartyService) ListPartiesForMovie(ctx context.Context, movieID int64) ([]*domain.WatchParty, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	parties, err := s.repo.ListByMovieID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list watch parties for movie: %w", err)
	}
	if parties == nil {
		parties = []*domain.WatchParty{}
	}
	return parties, nil
}

func (s *watchPartyService) GetParty(ctx context.Context, partyID int64) (*domain.WatchParty, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.load(ctx, partyID)
}

func (s *watchPartyService) UpdateParty(ctx context.Context, partyID int64, in domain.UpdatePartyInput) (*domain.WatchParty, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var problems []string
	var title *string
	if in.Title != nil {
		t, p := requiredText("title", *in.Title, maxTitleLength)
		problems = append(problems, p...)
		title = &t
	}
	finalize := in.IsFinalized != nil && *in.IsFinalized
	if in.SelectedDatetime != nil && !finalize {
		problems = append(problems, "selected_datetime can only be set together with is_finalized=true")
	}
	if finalize && in.SelectedDatetime == nil && in.TimeSlotID == nil {
		problems = append(problems, "selected_datetime or time_slot_id is required to finalize")
	}
	if err := domain.NewValidationError(problems...); err != nil {
		return nil, err
	}

	var updated *domain.WatchParty
	finalized := false
	err := s.repo.WithPartyLock(ctx, partyID, func(tx domain.WatchPartyTx) error {
		party := tx.Party()
		if in.IsFinalized != nil && !*in.IsFinalized && party.IsFinalized {
			return fmt.Errorf("watch party %d is finalized and cannot be reopened: %w", partyID, domain.ErrConflict)
		}
		if title != nil || in.Notes != nil {
			if err := tx.UpdateDetails(ctx, title, in.Notes); err != nil {
				return fmt.Errorf("update details: %w", err)
			}
		}
		if finalize {
			slot, err := selectSlot(party, in.TimeSlotID, in.SelectedDatetime)
			if err != nil {
				return err
			}
			if err := finalizeLocked(ctx, tx, slot); err != nil {
				return err
			}
			finalized = true
		}
		updated = tx.Party()
		return nil
	})
	if err != nil {
		return nil, s.translate("update watch party", err)
	}

	if finalized {
		s.afterFinalize(ctx, updated)
	} else {
		s.publish(ctx, domain.EventPartyUpdated, updated, nil)
	}
	return updated, nil
}

func (s *watchPartyService) Finalize(ctx context.Context, partyID, timeSlotID int64) (*domain.WatchParty, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.WatchParty
	err := s.repo.WithPartyLock(ctx, partyID, func(tx domain.WatchPartyTx) error {
		slot, err := selectSlot(tx.Party(), &timeSlotID, nil)
		if err != nil {
			return err
		}
		if err := finalizeLocked(ctx, tx, slot); err != nil {
			return err
		}
		updated = tx.Party()
		return nil
	})
	if err != nil {
		return nil, s.translate("finalize watch party", err)
	}
	s.afterFinalize(ctx, updated)
	return updated, nil
}

func (s *watchPartyService) DeleteParty(ctx context.Context, partyID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var deleted *domain.WatchParty
	err := s.repo.WithPartyLock(ctx, partyID, func(tx domain.WatchPartyTx) error {
		deleted = tx.Party()
		return tx.Delete(ctx)
	})
	if err != nil {
		return s.translate("delete watch party", err)
	}
	metrics.PartiesDeleted.Inc()
	s.publish(ctx, domain.EventPartyDeleted, deleted, nil)
	return nil
}

func (s *watchPartyService) AddParticipant(ctx context.Context, partyID int64, in domain.ParticipantInput) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, problems := requiredText("name", in.Name, maxNameLength)
	participant, p := newParticipant("participant", name, in.Email, s.now())
	problems = append(problems, p...)
	if err := domain.NewValidationError(problems...); err != nil {
		return nil, err
	}

	var party *domain.WatchParty
	err := s.repo.WithPartyLock(ctx, partyID, func(tx domain.WatchPartyTx) error {
		if tx.Party().IsFinalized {
			return fmt.Errorf("watch party %d is finalized: %w", partyID, domain.ErrConflict)
		}
		if err := tx.AddParticipant(ctx, participant); err != nil {
			return fmt.Errorf("add participant: %w", err)
		}
		party = tx.Party()
		return nil
	})
	if err != nil {
		return nil, s.translate("add participant", err)
	}
	metrics.ParticipantsAdded.Inc()

	s.publish(ctx, domain.EventParticipantAdded, party, participant)
	s.notifyInvited(ctx, party, []*domain.Participant{participant})
	return participant, nil
}

func (s *watchPartyService) CastVote(ctx context.Context, partyID int64, in domain.CastVoteInput) (*domain.Vote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		party *domain.WatchParty
		cast  *domain.Vote
	)
	err := s.repo.WithPartyLock(ctx, partyID, func(tx domain.WatchPartyTx) error {
		p := tx.Party()
		if p.FindParticipant(in.ParticipantID) == nil {
			return fmt.Errorf("participant %d does not belong to watch party %d: %w", in.ParticipantID, partyID, domain.ErrNotFound)
		}
		if p.FindTimeSlot(in.TimeSlotID) == nil {
			return fmt.Errorf("time slot %d does not belong to watch party %d: %w", in.TimeSlotID, partyID, domain.ErrNotFound)
		}
		if p.IsFinalized {
			return fmt.Errorf("watch party %d is finalized: %w", partyID, domain.ErrConflict)
		}
		v := &domain.Vote{
			ParticipantID: in.ParticipantID,
			TimeSlotID:    in.TimeSlotID,
			IsAvailable:   in.IsAvailable,
			VotedAt:       s.now(),
		}
		if err := tx.UpsertVote(ctx, v); err != nil {
			return fmt.Errorf("upsert vote: %w", err)
		}
		party, cast = tx.Party(), v
		return nil
	})
	if err != nil {
		return nil, s.translate("cast vote", err)
	}
	metrics.VotesCast.WithLabelValues(strconv.FormatBool(cast.IsAvailable)).Inc()

	s.publish(ctx, domain.EventVoteCast, party, domain.VoteCastData{
		Vote:         cast,
		Availability: AggregateOrdered(party.TimeSlots, len(party.Participants), party.Votes),
	})
	return cast, nil
}

func (s *watchPartyService) Availability(ctx context.Context, partyID int64) ([]domain.SlotAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	party, err := s.load(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return AggregateOrdered(party.TimeSlots, len(party.Participants), party.Votes), nil
}

func (s *watchPartyService) BestTime(ctx context.Context, partyID int64) (*domain.BestTime, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	party, err := s.load(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return ResolveBestTime(party.TimeSlots, len(party.Participants), party.Votes), nil
}

func (s *watchPartyService) ResolveInvite(ctx context.Context, token string) (*domain.WatchParty, *domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if s.invites == nil {
		return nil, nil, fmt.Errorf("invite links are disabled: %w", domain.ErrNotFound)
	}
	partyID, participantID, err := s.invites.Verify(token)
	if err != nil {
		return nil, nil, domain.NewValidationError("invalid or expired invite token")
	}
	party, err := s.load(ctx, partyID)
	if err != nil {
		return nil, nil, err
	}
	participant := party.FindParticipant(participantID)
	if participant == nil {
		return nil, nil, fmt.Errorf("participant %d: %w", participantID, domain.ErrNotFound)
	}
	return party, participant, nil
}

func (s *watchPartyService) load(ctx context.Context, partyID int64) (*domain.WatchParty, error) {
	party, err := s.repo.GetByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("watch party %d: %w", partyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get watch party: %w", err)
	}
	return party, nil
}

// translate keeps domain errors recognisable and wraps infrastructure failures.
func (s *watchPartyService) translate(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *watchPartyService) afterFinalize(ctx context.Context, party *domain.WatchParty) {
	metrics.PartiesFinalized.Inc()
	s.publish(ctx, domain.EventPartyFinalized, party, party)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyFinalized(ctx, party); err != nil {
		s.logger.WarnContext(ctx, "finalized notification failed", "party_id", party.ID, "err", err)
	}
}

func (s *watchPartyService) notifyInvited(ctx context.Context, party *domain.WatchParty, participants []*domain.Participant) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyInvited(ctx, party, participants); err != nil {
		s.logger.WarnContext(ctx, "invitation notification failed", "party_id", party.ID, "err", err)
	}
}

// publish is best-effort: the mutation is already committed.
func (s *watchPartyService) publish(ctx context.Context, eventType string, party *domain.WatchParty, data any) {
	if s.publisher == nil || party == nil {
		return
	}
	event := domain.PartyEvent{
		Type:       eventType,
		PartyID:    party.ID,
		MovieID:    party.MovieID,
		OccurredAt: s.now(),
		Data:       data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish party event failed", "type", eventType, "party_id", party.ID, "err", err)
	}
}

// selectSlot finds the slot to lock in, by id or by its proposed instant.
func selectSlot(party *domain.WatchParty, slotID *int64, at *time.Time) (*domain.TimeSlot, error) {
	var slot *domain.TimeSlot
	if slotID != nil {
		slot = party.FindTimeSlot(*slotID)
		if slot == nil {
			return nil, fmt.Errorf("time slot %d does not belong to watch party %d: %w", *slotID, party.ID, domain.ErrNotFound)
		}
		if at != nil && !slot.ProposedDatetime.Equal(*at) {
			return nil, domain.NewValidationError("selected_datetime does not match time_slot_id")
		}
		return slot, nil
	}
	slot = party.FindTimeSlotAt(*at)
	if slot == nil {
		return nil, fmt.Errorf("no time slot of watch party %d is proposed at %s: %w", party.ID, at.UTC().Format(time.RFC3339), domain.ErrNotFound)
	}
	return slot, nil
}

func finalizeLocked(ctx context.Context, tx domain.WatchPartyTx, slot *domain.TimeSlot) error {
	party := tx.Party()
	if party.IsFinalized {
		return fmt.Errorf("watch party %d is already finalized: %w", party.ID, domain.ErrConflict)
	}
	if err := tx.Finalize(ctx, slot.ProposedDatetime); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

func requiredText(field, value string, maxLen int) (string, []string) {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		return v, []string{field + " is required"}
	case utf8.RuneCountInString(v) > maxLen:
		return v, []string{fmt.Sprintf("%s must be at most %d characters", field, maxLen)}
	}
	return v, nil
}

func newParticipant(field, name string, email *string, joinedAt time.Time) (*domain.Participant, []string) {
	var problems []string
	if utf8.RuneCountInString(name) > maxNameLength {
		problems = append(problems, fmt.Sprintf("%s.name must be at most %d characters", field, maxNameLength))
	}
	email = trimOptional(email)
	if email != nil && (len(*email) > maxEmailLength || !validation.IsEmail(*email)) {
		problems = append(problems, field+".email must be a valid email address")
	}
	return domain.NewParticipant(name, email, joinedAt), problems
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
