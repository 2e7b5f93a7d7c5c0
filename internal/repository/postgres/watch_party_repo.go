package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"moviemate/internal/domain"
)

const partyColumns = `id, movie_id, title, host_name, notes, selected_datetime, is_finalized, created_at, updated_at`

type watchPartyRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewWatchPartyRepository(db *sql.DB) domain.WatchPartyRepository {
	return &watchPartyRepository{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *watchPartyRepository) Create(ctx context.Context, p *domain.WatchParty) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO watch_parties (movie_id, title, host_name, notes, is_finalized, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, p.MovieID, p.Title, p.HostName, nullString(p.Notes), p.CreatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert watch party: %w", err)
	}
	for i, s := range p.TimeSlots {
		query := `
			INSERT INTO watch_party_time_slots (watch_party_id, position, proposed_datetime, votes, created_at)
			VALUES ($1, $2, $3, 0, $4)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query, p.ID, i, s.ProposedDatetime, s.CreatedAt).Scan(&s.ID); err != nil {
			return fmt.Errorf("insert time slot: %w", err)
		}
	}
	for _, pt := range p.Participants {
		if err := insertParticipant(ctx, tx, p.ID, pt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID reads the party, its children and its vote ledger from one snapshot.
func (r *watchPartyRepository) GetByID(ctx context.Context, id int64) (*domain.WatchParty, error) {
	var party *domain.WatchParty
	err := r.snapshot(ctx, func(tx *sql.Tx) error {
		p, err := scanParty(tx.QueryRowContext(ctx, `SELECT `+partyColumns+` FROM watch_parties WHERE id = $1`, id))
		if err != nil {
			return err
		}
		if err := loadChildren(ctx, tx, []*domain.WatchParty{p}); err != nil {
			return err
		}
		if p.Votes, err = loadVotes(ctx, tx, p.ID); err != nil {
			return err
		}
		party = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (r *watchPartyRepository) ListByMovieID(ctx context.Context, movieID int64) ([]*domain.WatchParty, error) {
	var parties []*domain.WatchParty
	err := r.snapshot(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT ` + partyColumns + `
			FROM watch_parties
			WHERE movie_id = $1
			ORDER BY created_at ASC, id ASC
		`
		var err error
		if parties, err = queryParties(ctx, tx, query, movieID); err != nil {
			return err
		}
		return loadChildren(ctx, tx, parties)
	})
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *watchPartyRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.WatchParty, int, error) {
	var (
		parties []*domain.WatchParty
		total   int
	)
	err := r.snapshot(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM watch_parties`).Scan(&total); err != nil {
			return err
		}
		query := `
			SELECT ` + partyColumns + `
			FROM watch_parties
			ORDER BY created_at DESC, id DESC
			LIMIT $1 OFFSET $2
		`
		var err error
		if parties, err = queryParties(ctx, tx, query, params.Limit(), params.Offset()); err != nil {
			return err
		}
		return loadChildren(ctx, tx, parties)
	})
	if err != nil {
		return nil, 0, err
	}
	return parties, total, nil
}

// WithPartyLock holds the party row lock (SELECT ... FOR UPDATE) for the duration of fn.
func (r *watchPartyRepository) WithPartyLock(ctx context.Context, id int64, fn func(tx domain.WatchPartyTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := scanParty(tx.QueryRowContext(ctx, `SELECT `+partyColumns+` FROM watch_parties WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return err
	}
	if err := loadChildren(ctx, tx, []*domain.WatchParty{p}); err != nil {
		return err
	}
	if p.Votes, err = loadVotes(ctx, tx, p.ID); err != nil {
		return err
	}

	if err := fn(&partyTx{tx: tx, party: p, now: r.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *watchPartyRepository) snapshot(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// partyTx applies mutations to the locked row and mirrors them on the loaded party.
type partyTx struct {
	tx    *sql.Tx
	party *domain.WatchParty
	now   func() time.Time
}

func (t *partyTx) Party() *domain.WatchParty { return t.party }

func (t *partyTx) AddParticipant(ctx context.Context, pt *domain.Participant) error {
	if err := insertParticipant(ctx, t.tx, t.party.ID, pt); err != nil {
		return err
	}
	t.party.Participants = append(t.party.Participants, pt)
	return nil
}

func (t *partyTx) UpsertVote(ctx context.Context, v *domain.Vote) error {
	query := `
		INSERT INTO watch_party_votes (participant_id, time_slot_id, is_available, voted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, time_slot_id)
		DO UPDATE SET is_available = EXCLUDED.is_available, voted_at = EXCLUDED.voted_at
		RETURNING id
	`
	if err := t.tx.QueryRowContext(ctx, query, v.ParticipantID, v.TimeSlotID, v.IsAvailable, v.VotedAt).Scan(&v.ID); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}

	var count int
	recount := `
		UPDATE watch_party_time_slots
		SET votes = (SELECT COUNT(*) FROM watch_party_votes WHERE time_slot_id = $1 AND is_available)
		WHERE id = $1
		RETURNING votes
	`
	if err := t.tx.QueryRowContext(ctx, recount, v.TimeSlotID).Scan(&count); err != nil {
		return fmt.Errorf("recount slot votes: %w", err)
	}

	replaced := false
	for i, existing := range t.party.Votes {
		if existing.ParticipantID == v.ParticipantID && existing.TimeSlotID == v.TimeSlotID {
			t.party.Votes[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		t.party.Votes = append(t.party.Votes, v)
	}
	if s := t.party.FindTimeSlot(v.TimeSlotID); s != nil {
		s.Votes = count
	}
	return nil
}

func (t *partyTx) UpdateDetails(ctx context.Context, title, notes *string) error {
	now := t.now()
	query := `
		UPDATE watch_parties
		SET title = COALESCE($2, title), notes = COALESCE($3, notes), updated_at = $4
		WHERE id = $1
	`
	if _, err := t.tx.ExecContext(ctx, query, t.party.ID, nullString(title), nullString(notes), now); err != nil {
		return err
	}
	if title != nil {
		t.party.Title = *title
	}
	if notes != nil {
		n := *notes
		t.party.Notes = &n
	}
	t.party.UpdatedAt = &now
	return nil
}

func (t *partyTx) Finalize(ctx context.Context, selected time.Time) error {
	now := t.now()
	selected = selected.UTC()
	query := `
		UPDATE watch_parties
		SET is_finalized = TRUE, selected_datetime = $2, updated_at = $3
		WHERE id = $1 AND NOT is_finalized
	`
	res, err := t.tx.ExecContext(ctx, query, t.party.ID, selected, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	t.party.IsFinalized = true
	t.party.SelectedDatetime = &selected
	t.party.UpdatedAt = &now
	return nil
}

func (t *partyTx) Delete(ctx context.Context) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM watch_parties WHERE id = $1`, t.party.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertParticipant(ctx context.Context, q querier, partyID int64, pt *domain.Participant) error {
	query := `
		INSERT INTO watch_party_participants (watch_party_id, name, email, joined_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, query, partyID, pt.Name, nullString(pt.Email), pt.JoinedAt).Scan(&pt.ID); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(row rowScanner) (*domain.WatchParty, error) {
	p := &domain.WatchParty{}
	var notesNull sql.NullString
	var selectedNull, updatedNull sql.NullTime
	err := row.Scan(
		&p.ID, &p.MovieID, &p.Title, &p.HostName, &notesNull,
		&selectedNull, &p.IsFinalized, &p.CreatedAt, &updatedNull,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if notesNull.Valid {
		p.Notes = &notesNull.String
	}
	if selectedNull.Valid {
		t := selectedNull.Time.UTC()
		p.SelectedDatetime = &t
	}
	if updatedNull.Valid {
		t := updatedNull.Time.UTC()
		p.UpdatedAt = &t
	}
	p.TimeSlots = make([]*domain.TimeSlot, 0)
	p.Participants = make([]*domain.Participant, 0)
	p.Votes = make([]*domain.Vote, 0)
	return p, nil
}

func queryParties(ctx context.Context, q querier, query string, args ...any) ([]*domain.WatchParty, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	parties := make([]*domain.WatchParty, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// loadChildren attaches slots (in proposal order) and participants to parties.
func loadChildren(ctx context.Context, q querier, parties []*domain.WatchParty) error {
	if len(parties) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.WatchParty, len(parties))
	ids := make([]int64, 0, len(parties))
	for _, p := range parties {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	slotQuery := `
		SELECT id, watch_party_id, proposed_datetime, votes, created_at
		FROM watch_party_time_slots
		WHERE watch_party_id = ANY($1)
		ORDER BY watch_party_id, position, id
	`
	rows, err := q.QueryContext(ctx, slotQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		s := &domain.TimeSlot{}
		var partyID int64
		if err := rows.Scan(&s.ID, &partyID, &s.ProposedDatetime, &s.Votes, &s.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		s.ProposedDatetime = s.ProposedDatetime.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		if p := byID[partyID]; p != nil {
			p.TimeSlots = append(p.TimeSlots, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	participantQuery := `
		SELECT id, watch_party_id, name, email, joined_at
		FROM watch_party_participants
		WHERE watch_party_id = ANY($1)
		ORDER BY watch_party_id, id
	`
	rows, err = q.QueryContext(ctx, participantQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		pt := &domain.Participant{}
		var partyID int64
		var emailNull sql.NullString
		if err := rows.Scan(&pt.ID, &partyID, &pt.Name, &emailNull, &pt.JoinedAt); err != nil {
			return err
		}
		if emailNull.Valid {
			pt.Email = &emailNull.String
		}
		pt.JoinedAt = pt.JoinedAt.UTC()
		if p := byID[partyID]; p != nil {
			p.Participants = append(p.Participants, pt)
		}
	}
	return rows.Err()
}

func loadVotes(ctx context.Context, q querier, partyID int64) ([]*domain.Vote, error) {
	query := `
		SELECT v.id, v.participant_id, v.time_slot_id, v.is_available, v.voted_at
		FROM watch_party_votes v
		JOIN watch_party_time_slots s ON s.id = v.time_slot_id
		WHERE s.watch_party_id = $1
		ORDER BY v.id
	`
	rows, err := q.QueryContext(ctx, query, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		v := &domain.Vote{}
		if err := rows.Scan(&v.ID, &v.ParticipantID, &v.TimeSlotID, &v.IsAvailable, &v.VotedAt); err != nil {
			return nil, err
		}
		v.VotedAt = v.VotedAt.UTC()
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
