package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"moviemate/internal/delivery/http/helpers"
	"moviemate/internal/domain"
	"moviemate/internal/validation"
)

// Timestamp accepts RFC 3339 and offset-less ISO-8601 datetimes; the latter are read as UTC.
type Timestamp time.Time

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00", "2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q: expected ISO-8601", s)
}

// ParticipantRequest is one invitee in a create or add-participant request.
type ParticipantRequest struct {
	Name  string  `json:"name" validate:"max=100"`
	Email *string `json:"email" validate:"omitempty,trimmed_email,max=255"`
}

// CreateWatchPartyRequest is the request body for POST /watch-parties/.
type CreateWatchPartyRequest struct {
	MovieID      int64                `json:"movie_id" validate:"gt=0"`
	Title        string               `json:"title" validate:"required,max=255"`
	HostName     string               `json:"host_name" validate:"required,max=100"`
	Notes        *string              `json:"notes"`
	TimeSlots    []Timestamp          `json:"time_slots" validate:"min=1" swaggertype:"array,string" format:"date-time"`
	Participants []ParticipantRequest `json:"participants" validate:"min=1,dive"`
}

// Validate implements helpers.Validator.
func (c CreateWatchPartyRequest) Validate() []string {
	return validation.Struct(c)
}

func (c CreateWatchPartyRequest) toInput() domain.CreatePartyInput {
	in := domain.CreatePartyInput{
		MovieID:  c.MovieID,
		Title:    c.Title,
		HostName: c.HostName,
		Notes:    c.Notes,
	}
	for _, ts := range c.TimeSlots {
		in.TimeSlots = append(in.TimeSlots, time.Time(ts))
	}
	for _, p := range c.Participants {
		in.Participants = append(in.Participants, domain.ParticipantInput{Name: p.Name, Email: p.Email})
	}
	return in
}

// UpdateWatchPartyRequest is the request body for PUT /watch-parties/{partyID}. Omitted fields are unchanged.
type UpdateWatchPartyRequest struct {
	Title            *string    `json:"title" validate:"omitempty,trimmed_email,max=255"`
	Notes            *string    `json:"notes"`
	SelectedDatetime *Timestamp `json:"selected_datetime" swaggertype:"string" format:"date-time"`
	IsFinalized      *bool      `json:"is_finalized"`
	TimeSlotID       *int64     `json:"time_slot_id" validate:"omitempty,gt=0"`
}

// Validate implements helpers.Validator.
func (u UpdateWatchPartyRequest) Validate() []string {
	return validation.Struct(u)
}

// FinalizeRequest is the request body for POST /watch-parties/{partyID}/finalize.
type FinalizeRequest struct {
	TimeSlotID int64 `json:"time_slot_id" validate:"gt=0"`
}

// Validate implements helpers.Validator.
func (f FinalizeRequest) Validate() []string {
	return validation.Struct(f)
}

// AddParticipantRequest is the request body for POST /watch-parties/{partyID}/participants.
type AddParticipantRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Email *string `json:"email" validate:"omitempty,trimmed_email,max=255"`
}

// Validate implements helpers.Validator.
func (a AddParticipantRequest) Validate() []string {
	return validation.Struct(a)
}

// CastVoteRequest is the request body for POST /watch-parties/{partyID}/votes.
type CastVoteRequest struct {
	ParticipantID int64 `json:"participant_id" validate:"gt=0"`
	TimeSlotID    int64 `json:"time_slot_id" validate:"gt=0"`
	IsAvailable   *bool `json:"is_available" validate:"required"`
}

// Validate implements helpers.Validator.
func (c CastVoteRequest) Validate() []string {
	return validation.Struct(c)
}

// CastVoteResponse is the response body for POST /watch-parties/{partyID}/votes.
type CastVoteResponse struct {
	Message string       `json:"message"`
	VoteID  int64        `json:"vote_id"`
	Vote    *domain.Vote `json:"vote"`
}

// InviteResponse is the response body for GET /watch-parties/invites/{token}.
type InviteResponse struct {
	Party       *domain.WatchParty  `json:"party"`
	Participant *domain.Participant `json:"participant"`
}

type WatchPartyController struct {
	Logger  *slog.Logger
	Service domain.WatchPartyService
}

func NewWatchPartyController(logger *slog.Logger, svc domain.WatchPartyService) *WatchPartyController {
	return &WatchPartyController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateWatchParty godoc
// @Summary Create a watch party
// @Description Creates an open party with its proposed time slots and participants in one step. Blank participant names are skipped; at least one must remain.
// @Tags watch-parties
// @Accept json
// @Produce json
// @Param party body CreateWatchPartyRequest true "Party, slots and participants"
// @Success 201 {object} domain.WatchParty
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/ [post]
func (c *WatchPartyController) CreateWatchParty(w http.ResponseWriter, r *http.Request) {
	var req CreateWatchPartyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party, err := c.Service.CreateParty(r.Context(), req.toInput())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, party)
}

// ListWatchParties godoc
// @Summary List all watch parties
// @Description Newest first. Pagination metadata is returned in the X-Total-Count, X-Page, X-Page-Size and X-Total-Pages headers.
// @Tags watch-parties
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {array} domain.WatchParty
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/ [get]
func (c *WatchPartyController) ListWatchParties(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	parties, total, err := c.Service.ListParties(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.SetPaginationHeaders(w, helpers.NewPaginationMeta(params.Page, params.PageSize, total))
	helpers.WriteJSON(w, http.StatusOK, parties)
}

// ListMovieWatchParties godoc
// @Summary List watch parties for a movie
// @Description Parties for one catalog item in creation order. An unknown movie yields an empty list.
// @Tags watch-parties
// @Produce json
// @Param movieID path int true "Movie ID"
// @Success 200 {array} domain.WatchParty
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/movie/{movieID} [get]
func (c *WatchPartyController) ListMovieWatchParties(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	parties, err := c.Service.ListPartiesForMovie(r.Context(), movieID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, parties)
}

// GetWatchParty godoc
// @Summary Get a watch party
// @Tags watch-parties
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Success 200 {object} domain.WatchParty
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID} [get]
func (c *WatchPartyController) GetWatchParty(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	party, err := c.Service.GetParty(r.Context(), partyID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, party)
}

// UpdateWatchParty godoc
// @Summary Update or finalize a watch party
// @Description Edits title and notes. Setting is_finalized=true with selected_datetime or time_slot_id finalizes the party; finalization is one-way.
// @Tags watch-parties
// @Accept json
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Param party body UpdateWatchPartyRequest true "Fields to change"
// @Success 200 {object} domain.WatchParty
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID} [put]
func (c *WatchPartyController) UpdateWatchParty(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	var req UpdateWatchPartyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in := domain.UpdatePartyInput{
		Title:       req.Title,
		Notes:       req.Notes,
		IsFinalized: req.IsFinalized,
		TimeSlotID:  req.TimeSlotID,
	}
	if req.SelectedDatetime != nil {
		t := time.Time(*req.SelectedDatetime)
		in.SelectedDatetime = &t
	}
	party, err := c.Service.UpdateParty(r.Context(), partyID, in)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, party)
}

// FinalizeWatchParty godoc
// @Summary Finalize a watch party
// @Description Locks in one of the party's time slots. Fails with 409 when the party is already finalized.
// @Tags watch-parties
// @Accept json
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Param body body FinalizeRequest true "Chosen slot"
// @Success 200 {object} domain.WatchParty
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID}/finalize [post]
func (c *WatchPartyController) FinalizeWatchParty(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	var req FinalizeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party, err := c.Service.Finalize(r.Context(), partyID, req.TimeSlotID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, party)
}

// DeleteWatchParty godoc
// @Summary Delete a watch party
// @Description Removes the party with its slots, participants and votes.
// @Tags watch-parties
// @Param partyID path int true "Watch party ID"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID} [delete]
func (c *WatchPartyController) DeleteWatchParty(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	if err := c.Service.DeleteParty(r.Context(), partyID); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddParticipant godoc
// @Summary Add a participant
// @Description Adds an invitee to an open party. The new participant counts toward availability totals immediately.
// @Tags watch-parties
// @Accept json
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Param participant body AddParticipantRequest true "Participant"
// @Success 201 {object} domain.Participant
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID}/participants [post]
func (c *WatchPartyController) AddParticipant(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	var req AddParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	participant, err := c.Service.AddParticipant(r.Context(), partyID, domain.ParticipantInput{Name: req.Name, Email: req.Email})
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, participant)
}

// CastVote godoc
// @Summary Record availability
// @Description Upserts one participant's availability for one slot; a repeat vote replaces the earlier one.
// @Tags watch-parties
// @Accept json
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Param vote body CastVoteRequest true "Vote"
// @Success 200 {object} controllers.CastVoteResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID}/votes [post]
func (c *WatchPartyController) CastVote(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	var req CastVoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	vote, err := c.Service.CastVote(r.Context(), partyID, domain.CastVoteInput{
		ParticipantID: req.ParticipantID,
		TimeSlotID:    req.TimeSlotID,
		IsAvailable:   *req.IsAvailable,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, CastVoteResponse{Message: "Vote recorded successfully", VoteID: vote.ID, Vote: vote})
}

// GetAvailability godoc
// @Summary Per-slot availability
// @Description Available count and rounded percentage for every slot, in proposal order.
// @Tags watch-parties
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Success 200 {array} domain.SlotAvailability
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID}/availability [get]
func (c *WatchPartyController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	availability, err := c.Service.Availability(r.Context(), partyID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, availability)
}

// GetBestTime godoc
// @Summary Recommended time
// @Description The slot with the most available participants; ties go to the earliest datetime. 204 when the party has no slots.
// @Tags watch-parties
// @Produce json
// @Param partyID path int true "Watch party ID"
// @Success 200 {object} domain.BestTime
// @Success 204 "No recommendation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/{partyID}/best-time [get]
func (c *WatchPartyController) GetBestTime(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(w, r, "partyID")
	if !ok {
		return
	}
	best, err := c.Service.BestTime(r.Context(), partyID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if best == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, best)
}

// ResolveInvite godoc
// @Summary Resolve an invite link
// @Description Returns the party and the participant an emailed invite token identifies.
// @Tags watch-parties
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} controllers.InviteResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /watch-parties/invites/{token} [get]
func (c *WatchPartyController) ResolveInvite(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	party, participant, err := c.Service.ResolveInvite(r.Context(), token)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, InviteResponse{Party: party, Participant: participant})
}

// writeError maps domain errors to status codes and logs anything unexpected.
func (c *WatchPartyController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
