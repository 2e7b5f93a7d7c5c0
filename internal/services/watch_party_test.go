package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"moviemate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakePartyRepo is an in-memory WatchPartyRepository. WithPartyLock serialises
// on a single mutex and applies mutations to a copy that is kept only when fn succeeds.
type fakePartyRepo struct {
	mu      sync.Mutex
	byID    map[int64]*domain.WatchParty
	nextID  int64
	lockErr error // if set, WithPartyLock returns it before running fn
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{byID: make(map[int64]*domain.WatchParty), nextID: 1}
}

func (f *fakePartyRepo) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakePartyRepo) Create(ctx context.Context, p *domain.WatchParty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	for _, s := range p.TimeSlots {
		s.ID = f.id()
	}
	for _, pt := range p.Participants {
		pt.ID = f.id()
	}
	f.byID[p.ID] = cloneParty(p)
	return nil
}

func (f *fakePartyRepo) GetByID(ctx context.Context, id int64) (*domain.WatchParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneParty(p), nil
}

func (f *fakePartyRepo) ListByMovieID(ctx context.Context, movieID int64) ([]*domain.WatchParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.WatchParty
	for _, p := range f.byID {
		if p.MovieID == movieID {
			out = append(out, cloneParty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePartyRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.WatchParty, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.WatchParty
	for _, p := range f.byID {
		all = append(all, cloneParty(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.Limit(), total)
	return all[start:end], total, nil
}

func (f *fakePartyRepo) WithPartyLock(ctx context.Context, id int64, fn func(tx domain.WatchPartyTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return f.lockErr
	}
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	tx := &fakePartyTx{repo: f, party: cloneParty(p)}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.deleted {
		delete(f.byID, id)
		return nil
	}
	f.byID[id] = tx.party
	return nil
}

type fakePartyTx struct {
	repo    *fakePartyRepo
	party   *domain.WatchParty
	deleted bool
}

func (t *fakePartyTx) Party() *domain.WatchParty { return t.party }

func (t *fakePartyTx) AddParticipant(ctx context.Context, p *domain.Participant) error {
	p.ID = t.repo.id()
	t.party.Participants = append(t.party.Participants, p)
	return nil
}

func (t *fakePartyTx) UpsertVote(ctx context.Context, v *domain.Vote) error {
	replaced := false
	for i, existing := range t.party.Votes {
		if existing.ParticipantID == v.ParticipantID && existing.TimeSlotID == v.TimeSlotID {
			v.ID = existing.ID
			t.party.Votes[i] = v
			replaced = true
		}
	}
	if !replaced {
		v.ID = t.repo.id()
		t.party.Votes = append(t.party.Votes, v)
	}
	counts := Aggregate(t.party.TimeSlots, len(t.party.Participants), t.party.Votes)
	for _, s := range t.party.TimeSlots {
		s.Votes = counts[s.ID].AvailableCount
	}
	return nil
}

func (t *fakePartyTx) UpdateDetails(ctx context.Context, title, notes *string) error {
	if title != nil {
		t.party.Title = *title
	}
	if notes != nil {
		n := *notes
		t.party.Notes = &n
	}
	return nil
}

func (t *fakePartyTx) Finalize(ctx context.Context, selected time.Time) error {
	t.party.IsFinalized = true
	t.party.SelectedDatetime = &selected
	return nil
}

func (t *fakePartyTx) Delete(ctx context.Context) error {
	t.deleted = true
	return nil
}

func cloneParty(p *domain.WatchParty) *domain.WatchParty {
	c := *p
	c.TimeSlots = make([]*domain.TimeSlot, len(p.TimeSlots))
	for i, s := range p.TimeSlots {
		cs := *s
		c.TimeSlots[i] = &cs
	}
	c.Participants = make([]*domain.Participant, len(p.Participants))
	for i, pt := range p.Participants {
		cp := *pt
		c.Participants[i] = &cp
	}
	c.Votes = make([]*domain.Vote, len(p.Votes))
	for i, v := range p.Votes {
		cv := *v
		c.Votes[i] = &cv
	}
	return &c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.PartyEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, e domain.PartyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	mu        sync.Mutex
	invited   []string
	finalized []int64
	err       error
}

func (r *recordingNotifier) NotifyInvited(ctx context.Context, party *domain.WatchParty, participants []*domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range participants {
		r.invited = append(r.invited, p.Name)
	}
	return r.err
}

func (r *recordingNotifier) NotifyFinalized(ctx context.Context, party *domain.WatchParty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = append(r.finalized, party.ID)
	return r.err
}

type fakeVerifier struct {
	partyID, participantID int64
	err                    error
}

func (f fakeVerifier) Verify(token string) (int64, int64, error) {
	return f.partyID, f.participantID, f.err
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(i int64) *int64 { return &i }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func newTestService(repo domain.WatchPartyRepository, notifier domain.PartyNotifier, publisher domain.EventPublisher, verifier domain.InviteTokenVerifier) domain.WatchPartyService {
	return NewWatchPartyService(repo, notifier, publisher, verifier, testLogger, 5*time.Second)
}

func duneInput(t *testing.T) domain.CreatePartyInput {
	return domain.CreatePartyInput{
		MovieID:  42,
		Title:    "Dune night",
		HostName: "Hana",
		TimeSlots: []time.Time{
			mustTime(t, "2024-03-01T19:00:00Z"),
			mustTime(t, "2024-03-01T21:00:00Z"),
		},
		Participants: []domain.ParticipantInput{
			{Name: "Alice", Email: strPtr("alice@example.com")},
			{Name: "Bob"},
			{Name: "Carol", Email: strPtr("  ")},
		},
	}
}

func TestWatchPartyService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	notifier := &recordingNotifier{}
	svc := newTestService(newFakePartyRepo(), notifier, pub, nil)

	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)
	require.Len(t, party.TimeSlots, 2)
	require.Len(t, party.Participants, 3)
	assert.Nil(t, party.Participants[2].Email, "blank email is stored as absent")
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, notifier.invited)

	s1, s2 := party.TimeSlots[0].ID, party.TimeSlots[1].ID
	alice, bob, carol := party.Participants[0].ID, party.Participants[1].ID, party.Participants[2].ID
	for _, in := range []domain.CastVoteInput{
		{ParticipantID: alice, TimeSlotID: s1, IsAvailable: true},
		{ParticipantID: alice, TimeSlotID: s2, IsAvailable: true},
		{ParticipantID: bob, TimeSlotID: s1, IsAvailable: true},
		{ParticipantID: bob, TimeSlotID: s2, IsAvailable: false},
		{ParticipantID: carol, TimeSlotID: s1, IsAvailable: false},
		{ParticipantID: carol, TimeSlotID: s2, IsAvailable: false},
	} {
		_, err := svc.CastVote(ctx, party.ID, in)
		require.NoError(t, err)
	}

	avail, err := svc.Availability(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, 2, avail[0].AvailableCount)
	assert.Equal(t, 67, avail[0].AvailabilityPercentage)
	assert.Equal(t, 1, avail[1].AvailableCount)
	assert.Equal(t, 33, avail[1].AvailabilityPercentage)

	best, err := svc.BestTime(ctx, party.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, s1, best.TimeSlotID)
	assert.Equal(t, 67, best.AvailabilityPercentage)

	finalized, err := svc.Finalize(ctx, party.ID, s1)
	require.NoError(t, err)
	assert.True(t, finalized.IsFinalized)
	require.NotNil(t, finalized.SelectedDatetime)
	assert.True(t, finalized.SelectedDatetime.Equal(mustTime(t, "2024-03-01T19:00:00Z")))
	assert.Equal(t, []int64{party.ID}, notifier.finalized)

	_, err = svc.CastVote(ctx, party.ID, domain.CastVoteInput{ParticipantID: carol, TimeSlotID: s2, IsAvailable: true})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Finalize(ctx, party.ID, s2)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := svc.GetParty(ctx, party.ID)
	require.NoError(t, err)
	assert.True(t, got.SelectedDatetime.Equal(mustTime(t, "2024-03-01T19:00:00Z")))

	types := pub.types()
	assert.Equal(t, domain.EventPartyCreated, types[0])
	assert.Equal(t, domain.EventPartyFinalized, types[len(types)-1])
}

func TestWatchPartyService_CreateParty_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *domain.CreatePartyInput)
		want   string
	}{
		{"blank title", func(in *domain.CreatePartyInput) { in.Title = "   " }, "title is required"},
		{"blank host", func(in *domain.CreatePartyInput) { in.HostName = "" }, "host_name is required"},
		{"no slots", func(in *domain.CreatePartyInput) { in.TimeSlots = nil }, "time_slots must contain at least one datetime"},
		{"zero slot", func(in *domain.CreatePartyInput) { in.TimeSlots = []time.Time{{}} }, "time_slots[0] is not a valid datetime"},
		{"only blank participants", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: " "}, {Name: ""}}
		}, "participants must contain at least one named participant"},
		{"bad movie", func(in *domain.CreatePartyInput) { in.MovieID = 0 }, "movie_id must be a positive integer"},
		{"bad email", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: "Al", Email: strPtr("nope")}}
		}, "participants[0].email must be a valid email address"},
		{"email without domain", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: "Al", Email: strPtr("a@")}}
		}, "participants[0].email must be a valid email address"},
		{"bare at sign", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: "Al", Email: strPtr("@")}}
		}, "participants[0].email must be a valid email address"},
		{"email without local part", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: "Al", Email: strPtr("@b")}}
		}, "participants[0].email must be a valid email address"},
		{"email with space", func(in *domain.CreatePartyInput) {
			in.Participants = []domain.ParticipantInput{{Name: "Al", Email: strPtr("not an@email")}}
		}, "participants[0].email must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePartyRepo()
			svc := newTestService(repo, nil, nil, nil)
			in := duneInput(t)
			tt.mutate(&in)

			_, err := svc.CreateParty(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Problems, tt.want)
			assert.Empty(t, repo.byID, "nothing persisted on validation failure")
		})
	}
}

func TestWatchPartyService_CreateParty_SkipsBlankParticipants(t *testing.T) {
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	in := duneInput(t)
	in.Participants = []domain.ParticipantInput{{Name: ""}, {Name: "  Dee  "}}

	party, err := svc.CreateParty(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, party.Participants, 1)
	assert.Equal(t, "Dee", party.Participants[0].Name)
}

func TestWatchPartyService_CastVote_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := newFakePartyRepo()
	svc := newTestService(repo, nil, nil, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)
	pid, sid := party.Participants[0].ID, party.TimeSlots[0].ID

	first, err := svc.CastVote(ctx, party.ID, domain.CastVoteInput{ParticipantID: pid, TimeSlotID: sid, IsAvailable: true})
	require.NoError(t, err)
	second, err := svc.CastVote(ctx, party.ID, domain.CastVoteInput{ParticipantID: pid, TimeSlotID: sid, IsAvailable: false})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := repo.GetByID(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, stored.Votes, 1)
	assert.False(t, stored.Votes[0].IsAvailable)
	assert.Equal(t, 0, stored.TimeSlots[0].Votes)
}

func TestWatchPartyService_CastVote_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	a, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)
	b, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	tests := []struct {
		name    string
		partyID int64
		in      domain.CastVoteInput
		want    error
	}{
		{"unknown party", 999, domain.CastVoteInput{ParticipantID: a.Participants[0].ID, TimeSlotID: a.TimeSlots[0].ID}, domain.ErrNotFound},
		{"participant of other party", a.ID, domain.CastVoteInput{ParticipantID: b.Participants[0].ID, TimeSlotID: a.TimeSlots[0].ID}, domain.ErrNotFound},
		{"slot of other party", a.ID, domain.CastVoteInput{ParticipantID: a.Participants[0].ID, TimeSlotID: b.TimeSlots[0].ID}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CastVote(ctx, tt.partyID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWatchPartyService_DeleteThenVote(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(newFakePartyRepo(), nil, pub, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteParty(ctx, party.ID))
	assert.Contains(t, pub.types(), domain.EventPartyDeleted)

	_, err = svc.CastVote(ctx, party.ID, domain.CastVoteInput{ParticipantID: party.Participants[0].ID, TimeSlotID: party.TimeSlots[0].ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetParty(ctx, party.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteParty(ctx, party.ID), domain.ErrNotFound)
}

func TestWatchPartyService_Finalize_UnknownSlot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, party.ID, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetParty(ctx, party.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFinalized)
}

func TestWatchPartyService_ConcurrentFinalize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), &recordingNotifier{}, &recordingPublisher{}, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot := party.TimeSlots[i%2].ID
			_, err := svc.Finalize(ctx, party.ID, slot)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, conflicts)
}

func TestWatchPartyService_ConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	in := duneInput(t)
	in.Participants = nil
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		in.Participants = append(in.Participants, domain.ParticipantInput{Name: name})
	}
	party, err := svc.CreateParty(ctx, in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, p := range party.Participants {
		for _, s := range party.TimeSlots {
			wg.Add(1)
			go func(pid, sid int64) {
				defer wg.Done()
				_, err := svc.CastVote(ctx, party.ID, domain.CastVoteInput{ParticipantID: pid, TimeSlotID: sid, IsAvailable: true})
				assert.NoError(t, err)
			}(p.ID, s.ID)
		}
	}
	wg.Wait()

	avail, err := svc.Availability(ctx, party.ID)
	require.NoError(t, err)
	for _, a := range avail {
		assert.Equal(t, 8, a.AvailableCount)
		assert.Equal(t, 100, a.AvailabilityPercentage)
	}
}

func TestWatchPartyService_UpdateParty(t *testing.T) {
	ctx := context.Background()
	t19 := mustTime(t, "2024-03-01T19:00:00Z")
	t21 := mustTime(t, "2024-03-01T21:00:00Z")

	tests := []struct {
		name      string
		in        func(p *domain.WatchParty) domain.UpdatePartyInput
		wantErr   error
		finalized bool
		check     func(t *testing.T, p *domain.WatchParty)
	}{
		{
			name: "edits title and notes",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{Title: strPtr("  Dune 2  "), Notes: strPtr("bring snacks")}
			},
			check: func(t *testing.T, p *domain.WatchParty) {
				assert.Equal(t, "Dune 2", p.Title)
				assert.Equal(t, "bring snacks", *p.Notes)
				assert.False(t, p.IsFinalized)
			},
		},
		{
			name: "finalizes by selected datetime",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true), SelectedDatetime: &t21}
			},
			check: func(t *testing.T, p *domain.WatchParty) {
				assert.True(t, p.IsFinalized)
				assert.True(t, p.SelectedDatetime.Equal(t21))
			},
		},
		{
			name: "finalizes by time slot id",
			in: func(p *domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true), TimeSlotID: int64Ptr(p.TimeSlots[0].ID)}
			},
			check: func(t *testing.T, p *domain.WatchParty) {
				assert.True(t, p.SelectedDatetime.Equal(t19))
			},
		},
		{
			name: "selected datetime must match a slot",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				at := t21.Add(time.Hour)
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true), SelectedDatetime: &at}
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "slot id and datetime disagree",
			in: func(p *domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true), TimeSlotID: int64Ptr(p.TimeSlots[0].ID), SelectedDatetime: &t21}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "selected datetime without finalize",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{SelectedDatetime: &t19}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "finalize without a target",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true)}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "blank title",
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{Title: strPtr(" ")}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:      "cannot reopen",
			finalized: true,
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(false)}
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:      "cannot refinalize",
			finalized: true,
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{IsFinalized: boolPtr(true), SelectedDatetime: &t21}
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:      "title editable after finalize",
			finalized: true,
			in: func(*domain.WatchParty) domain.UpdatePartyInput {
				return domain.UpdatePartyInput{Title: strPtr("Final cut")}
			},
			check: func(t *testing.T, p *domain.WatchParty) {
				assert.Equal(t, "Final cut", p.Title)
				assert.True(t, p.SelectedDatetime.Equal(t19))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakePartyRepo(), nil, nil, nil)
			party, err := svc.CreateParty(ctx, duneInput(t))
			require.NoError(t, err)
			if tt.finalized {
				_, err := svc.Finalize(ctx, party.ID, party.TimeSlots[0].ID)
				require.NoError(t, err)
			}

			got, err := svc.UpdateParty(ctx, party.ID, tt.in(party))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)

			stored, err := svc.GetParty(ctx, party.ID)
			require.NoError(t, err)
			assert.Equal(t, got.Title, stored.Title)
			assert.Equal(t, got.IsFinalized, stored.IsFinalized)
		})
	}
}

func TestWatchPartyService_UpdateParty_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	_, err = svc.UpdateParty(ctx, party.ID, domain.UpdatePartyInput{
		Title:       strPtr("Renamed"),
		IsFinalized: boolPtr(true),
		TimeSlotID:  int64Ptr(999),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := svc.GetParty(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune night", stored.Title)
}

func TestWatchPartyService_AddParticipant(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(newFakePartyRepo(), notifier, nil, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	p, err := svc.AddParticipant(ctx, party.ID, domain.ParticipantInput{Name: " Dave ", Email: strPtr("dave@example.com")})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Dave", p.Name)
	assert.Contains(t, notifier.invited, "Dave")

	avail, err := svc.Availability(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, avail[0].TotalParticipants)

	_, err = svc.AddParticipant(ctx, party.ID, domain.ParticipantInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AddParticipant(ctx, party.ID, domain.ParticipantInput{Name: "Eve", Email: strPtr("a@")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Finalize(ctx, party.ID, party.TimeSlots[0].ID)
	require.NoError(t, err)
	_, err = svc.AddParticipant(ctx, party.ID, domain.ParticipantInput{Name: "Late"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestWatchPartyService_BestTime_NoVotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	in := duneInput(t)
	in.TimeSlots = []time.Time{mustTime(t, "2024-03-02T19:00:00Z"), mustTime(t, "2024-03-01T19:00:00Z")}
	party, err := svc.CreateParty(ctx, in)
	require.NoError(t, err)

	best, err := svc.BestTime(ctx, party.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, party.TimeSlots[1].ID, best.TimeSlotID)
	assert.Equal(t, 0, best.AvailabilityPercentage)

	_, err = svc.BestTime(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWatchPartyService_Lists(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakePartyRepo(), nil, nil, nil)
	for _, movie := range []int64{1, 2, 1} {
		in := duneInput(t)
		in.MovieID = movie
		_, err := svc.CreateParty(ctx, in)
		require.NoError(t, err)
	}

	forMovie, err := svc.ListPartiesForMovie(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, forMovie, 2)

	none, err := svc.ListPartiesForMovie(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	page, total, err := svc.ListParties(ctx, domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)
}

func TestWatchPartyService_SideEffectFailuresDoNotFail(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newTestService(newFakePartyRepo(), notifier, pub, nil)

	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, party.ID, party.TimeSlots[0].ID)
	require.NoError(t, err)
}

func TestWatchPartyService_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakePartyRepo()
	svc := newTestService(repo, nil, nil, nil)
	party, err := svc.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)

	repo.lockErr = errors.New("connection reset")
	_, err = svc.Finalize(ctx, party.ID, party.TimeSlots[0].ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "finalize watch party")
}

func TestWatchPartyService_ResolveInvite(t *testing.T) {
	ctx := context.Background()
	repo := newFakePartyRepo()
	seed := newTestService(repo, nil, nil, nil)
	party, err := seed.CreateParty(ctx, duneInput(t))
	require.NoError(t, err)
	bob := party.Participants[1]

	t.Run("valid token", func(t *testing.T) {
		svc := newTestService(repo, nil, nil, fakeVerifier{partyID: party.ID, participantID: bob.ID})
		gotParty, gotParticipant, err := svc.ResolveInvite(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, party.ID, gotParty.ID)
		assert.Equal(t, "Bob", gotParticipant.Name)
	})
	t.Run("bad token", func(t *testing.T) {
		svc := newTestService(repo, nil, nil, fakeVerifier{err: errors.New("expired")})
		_, _, err := svc.ResolveInvite(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("participant gone", func(t *testing.T) {
		svc := newTestService(repo, nil, nil, fakeVerifier{partyID: party.ID, participantID: 9999})
		_, _, err := svc.ResolveInvite(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
	t.Run("disabled", func(t *testing.T) {
		_, _, err := seed.ResolveInvite(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
