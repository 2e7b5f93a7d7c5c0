package domain

import (
	"context"
	"time"
)

// WatchParty is a proposed group viewing session for one catalog item.
// SelectedDatetime is set iff IsFinalized, and then equals one slot's ProposedDatetime.
// swagger:model WatchParty
type WatchParty struct {
	ID               int64          `json:"id"`
	MovieID          int64          `json:"movie_id"`
	Title            string         `json:"title"`
	HostName         string         `json:"host_name"`
	Notes            *string        `json:"notes"`
	SelectedDatetime *time.Time     `json:"selected_datetime"`
	IsFinalized      bool           `json:"is_finalized"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at"`
	TimeSlots        []*TimeSlot    `json:"time_slots"`
	Participants     []*Participant `json:"participants"`

	// Votes is the ledger snapshot loaded with the party. It is not part of the API payload.
	Votes []*Vote `json:"-"`
}

// TimeSlot is one candidate datetime. Votes is a derived count of available votes;
// the ledger is authoritative.
// swagger:model TimeSlot
type TimeSlot struct {
	ID               int64     `json:"id"`
	ProposedDatetime time.Time `json:"proposed_datetime"`
	Votes            int       `json:"votes"`
	CreatedAt        time.Time `json:"created_at"`
}

// Participant is a named invitee of a party.
// swagger:model Participant
type Participant struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    *string   `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// Vote is a participant's availability for one slot. (ParticipantID, TimeSlotID) is unique.
// swagger:model Vote
type Vote struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	TimeSlotID    int64     `json:"time_slot_id"`
	IsAvailable   bool      `json:"is_available"`
	VotedAt       time.Time `json:"voted_at"`
}

// NewWatchParty returns an open party. IDs are assigned by the repository on create.
func NewWatchParty(movieID int64, title, hostName string, notes *string, slots []time.Time, participants []*Participant, createdAt time.Time) *WatchParty {
	p := &WatchParty{
		MovieID:      movieID,
		Title:        title,
		HostName:     hostName,
		Notes:        notes,
		CreatedAt:    createdAt,
		TimeSlots:    make([]*TimeSlot, 0, len(slots)),
		Participants: participants,
		Votes:        []*Vote{},
	}
	for _, at := range slots {
		p.TimeSlots = append(p.TimeSlots, &TimeSlot{ProposedDatetime: at.UTC(), CreatedAt: createdAt})
	}
	for _, pt := range p.Participants {
		pt.JoinedAt = createdAt
	}
	return p
}

// NewParticipant returns a Participant with the given name and optional email.
func NewParticipant(name string, email *string, joinedAt time.Time) *Participant {
	return &Participant{Name: name, Email: email, JoinedAt: joinedAt}
}

// FindTimeSlot returns the party's slot with the given id, or nil.
func (p *WatchParty) FindTimeSlot(id int64) *TimeSlot {
	for _, s := range p.TimeSlots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindTimeSlotAt returns the first slot proposed at the same instant as t, or nil.
func (p *WatchParty) FindTimeSlotAt(t time.Time) *TimeSlot {
	for _, s := range p.TimeSlots {
		if s.ProposedDatetime.Equal(t) {
			return s
		}
	}
	return nil
}

// FindParticipant returns the party's participant with the given id, or nil.
func (p *WatchParty) FindParticipant(id int64) *Participant {
	for _, pt := range p.Participants {
		if pt.ID == id {
			return pt
		}
	}
	return nil
}

// CreatePartyInput carries the fields accepted by CreateParty.
type CreatePartyInput struct {
	MovieID      int64
	Title        string
	HostName     string
	Notes        *string
	TimeSlots    []time.Time
	Participants []ParticipantInput
}

// ParticipantInput is a requested invitee.
type ParticipantInput struct {
	Name  string
	Email *string
}

// UpdatePartyInput holds optional fields; nil means unchanged.
type UpdatePartyInput struct {
	Title            *string
	Notes            *string
	SelectedDatetime *time.Time
	IsFinalized      *bool
	TimeSlotID       *int64
}

// CastVoteInput is one availability upsert.
type CastVoteInput struct {
	ParticipantID int64
	TimeSlotID    int64
	IsAvailable   bool
}

// WatchPartyRepository defines storage for parties and everything they own.
type WatchPartyRepository interface {
	// Create persists the party with its slots and participants atomically and assigns ids.
	Create(ctx context.Context, party *WatchParty) error
	// GetByID returns a consistent snapshot including the vote ledger.
	GetByID(ctx context.Context, id int64) (*WatchParty, error)
	ListByMovieID(ctx context.Context, movieID int64) ([]*WatchParty, error)
	List(ctx context.Context, params PaginationParams) ([]*WatchParty, int, error)
	// WithPartyLock runs fn while holding an exclusive lock on the party.
	// It returns ErrNotFound if the party does not exist. fn's error aborts the unit of work.
	WithPartyLock(ctx context.Context, id int64, fn func(tx WatchPartyTx) error) error
}

// WatchPartyTx mutates a single locked party. Party() is loaded under the lock.
type WatchPartyTx interface {
	Party() *WatchParty
	AddParticipant(ctx context.Context, participant *Participant) error
	UpsertVote(ctx context.Context, vote *Vote) error
	UpdateDetails(ctx context.Context, title, notes *string) error
	Finalize(ctx context.Context, selected time.Time) error
	Delete(ctx context.Context) error
}

// WatchPartyService is the party lifecycle manager, vote ledger and best-time resolver.
type WatchPartyService interface {
	CreateParty(ctx context.Context, in CreatePartyInput) (*WatchParty, error)
	ListParties(ctx context.Context, params PaginationParams) ([]*WatchParty, int, error)
	ListPartiesForMovie(ctx context.Context, movieID int64) ([]*WatchParty, error)
	GetParty(ctx context.Context, partyID int64) (*WatchParty, error)
	UpdateParty(ctx context.Context, partyID int64, in UpdatePartyInput) (*WatchParty, error)
	Finalize(ctx context.Context, partyID, timeSlotID int64) (*WatchParty, error)
	DeleteParty(ctx context.Context, partyID int64) error
	AddParticipant(ctx context.Context, partyID int64, in ParticipantInput) (*Participant, error)
	CastVote(ctx context.Context, partyID int64, in CastVoteInput) (*Vote, error)
	Availability(ctx context.Context, partyID int64) ([]SlotAvailability, error)
	BestTime(ctx context.Context, partyID int64) (*BestTime, error)
	ResolveInvite(ctx context.Context, token string) (*WatchParty, *Participant, error)
}
