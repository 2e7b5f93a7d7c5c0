package services

import (
	"math"

	"moviemate/internal/domain"
)

// Aggregate counts, per slot, the participants who marked themselves available.
// Participants without a vote for a slot count as unavailable. Votes naming
// unknown slots are ignored.
func Aggregate(slots []*domain.TimeSlot, totalParticipants int, votes []*domain.Vote) map[int64]domain.SlotAvailability {
	available := make(map[int64]int, len(slots))
	for _, v := range votes {
		if v.IsAvailable {
			available[v.TimeSlotID]++
		}
	}
	out := make(map[int64]domain.SlotAvailability, len(slots))
	for _, s := range slots {
		n := available[s.ID]
		out[s.ID] = domain.SlotAvailability{
			TimeSlotID:             s.ID,
			ProposedDatetime:       s.ProposedDatetime,
			AvailableCount:         n,
			TotalParticipants:      totalParticipants,
			AvailabilityPercentage: percentage(n, totalParticipants),
		}
	}
	return out
}

// AggregateOrdered returns Aggregate's result in slot proposal order.
func AggregateOrdered(slots []*domain.TimeSlot, totalParticipants int, votes []*domain.Vote) []domain.SlotAvailability {
	byID := Aggregate(slots, totalParticipants, votes)
	out := make([]domain.SlotAvailability, 0, len(slots))
	for _, s := range slots {
		out = append(out, byID[s.ID])
	}
	return out
}

// ResolveBestTime picks the slot with the most available participants. Ties go to
// the earliest proposed datetime, then to the earliest proposal. It returns nil
// only when there are no slots; a party without votes still gets its earliest slot.
func ResolveBestTime(slots []*domain.TimeSlot, totalParticipants int, votes []*domain.Vote) *domain.BestTime {
	if len(slots) == 0 {
		return nil
	}
	agg := Aggregate(slots, totalParticipants, votes)
	var best *domain.TimeSlot
	for _, s := range slots {
		if best == nil || better(agg[s.ID], agg[best.ID]) {
			best = s
		}
	}
	a := agg[best.ID]
	return &domain.BestTime{
		TimeSlotID:             a.TimeSlotID,
		ProposedDatetime:       a.ProposedDatetime,
		Votes:                  a.AvailableCount,
		AvailableCount:         a.AvailableCount,
		TotalParticipants:      a.TotalParticipants,
		AvailabilityPercentage: a.AvailabilityPercentage,
	}
}

// better reports whether a strictly beats b. Equal candidates keep the earlier proposal.
func better(a, b domain.SlotAvailability) bool {
	if a.AvailableCount != b.AvailableCount {
		return a.AvailableCount > b.AvailableCount
	}
	return a.ProposedDatetime.Before(b.ProposedDatetime)
}

func percentage(available, total int) int {
	if total <= 0 || available <= 0 {
		return 0
	}
	pct := int(math.Round(float64(available) / float64(total) * 100))
	return min(pct, 100)
}
