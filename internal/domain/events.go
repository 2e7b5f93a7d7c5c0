package domain

import (
	"context"
	"time"
)

// Party event types. They double as AMQP routing keys and websocket message types.
const (
	EventPartyCreated     = "watch_party.created"
	EventPartyUpdated     = "watch_party.updated"
	EventParticipantAdded = "watch_party.participant_added"
	EventVoteCast         = "watch_party.vote_cast"
	EventPartyFinalized   = "watch_party.finalized"
	EventPartyDeleted     = "watch_party.deleted"
)

// PartyEvent is emitted after a party mutation commits.
type PartyEvent struct {
	Type       string    `json:"type"`
	PartyID    int64     `json:"party_id"`
	MovieID    int64     `json:"movie_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// VoteCastData is the payload of EventVoteCast.
type VoteCastData struct {
	Vote         *Vote              `json:"vote"`
	Availability []SlotAvailability `json:"availability"`
}

// EventPublisher delivers party events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event PartyEvent) error
}
