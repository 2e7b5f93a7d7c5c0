package domain

import "time"

// SlotAvailability is the aggregated availability of one time slot.
// swagger:model SlotAvailability
type SlotAvailability struct {
	TimeSlotID             int64     `json:"time_slot_id"`
	ProposedDatetime       time.Time `json:"proposed_datetime"`
	AvailableCount         int       `json:"available_count"`
	TotalParticipants      int       `json:"total_participants"`
	AvailabilityPercentage int       `json:"availability_percentage"`
}

// BestTime is the slot judged most broadly available.
// Votes mirrors AvailableCount for clients that read the slot's derived count.
// swagger:model BestTime
type BestTime struct {
	TimeSlotID             int64     `json:"time_slot_id"`
	ProposedDatetime       time.Time `json:"proposed_datetime"`
	Votes                  int       `json:"votes"`
	AvailableCount         int       `json:"available_count"`
	TotalParticipants      int       `json:"total_participants"`
	AvailabilityPercentage int       `json:"availability_percentage"`
}
