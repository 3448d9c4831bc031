package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
	"github.com/heartmarshall/keepsake-backend/internal/service/event"
	"github.com/heartmarshall/keepsake-backend/pkg/ctxutil"
)

// eventService defines the minimal interface needed by EventHandler.
type eventService interface {
	Create(ctx context.Context, organizerID uuid.UUID, input event.CreateInput) (*event.CreateResult, error)
	Get(ctx context.Context, organizerID, eventID uuid.UUID) (*event.View, error)
	List(ctx context.Context, organizerID uuid.UUID) ([]event.ListItem, error)
	Close(ctx context.Context, organizerID, eventID uuid.UUID) (*domain.Event, error)
	ExtendDeadline(ctx context.Context, organizerID, eventID uuid.UUID, deadline time.Time) (*domain.Event, error)
	Delete(ctx context.Context, organizerID, eventID uuid.UUID) error
	SendKeepsakeBooks(ctx context.Context, organizerID, eventID uuid.UUID) (*event.DeliveryReport, error)
	ExtendDeadlines(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID, deadline time.Time) (*event.BatchResult, error)
	SendReminders(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID, note string) (*event.BatchResult, error)
}

// EventHandler serves organizer-facing event endpoints. Every route
// requires an authenticated organizer.
type EventHandler struct {
	svc eventService
	log *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(svc eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: logger.With("handler", "event")}
}

type createEventRequest struct {
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Type           string    `json:"type"`
	Deadline       time.Time `json:"deadline"`
	RecipientName  string    `json:"recipientName,omitempty"`
	RecipientEmail string    `json:"recipientEmail,omitempty"`
}

type deadlineRequest struct {
	Deadline time.Time `json:"deadline"`
}

type batchDeadlineRequest struct {
	EventIDs []uuid.UUID `json:"eventIds"`
	Deadline time.Time   `json:"deadline"`
}

type batchRemindersRequest struct {
	EventIDs []uuid.UUID `json:"eventIds"`
	Message  string      `json:"message,omitempty"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Deadline    time.Time `json:"deadline"`
	CreatedAt   time.Time `json:"createdAt"`
}

type recipientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Contributions int    `json:"contributions"`
}

type createEventResponse struct {
	Event            eventResponse       `json:"event"`
	Recipients       []recipientResponse `json:"recipients"`
	ContributorToken string              `json:"contributorToken"`
	JoinToken        string              `json:"joinToken,omitempty"`
}

type eventViewResponse struct {
	Event             eventResponse       `json:"event"`
	Recipients        []recipientResponse `json:"recipients"`
	ContributionCount int                 `json:"contributionCount"`
}

type eventListItemResponse struct {
	Event             eventResponse `json:"event"`
	RecipientCount    int           `json:"recipientCount"`
	ContributionCount int           `json:"contributionCount"`
}

type deliveryRecipientResponse struct {
	RecipientID string `json:"recipientId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	MessageID   string `json:"messageId,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type deliveryReportResponse struct {
	EventID    string                      `json:"eventId"`
	Sent       int                         `json:"sent"`
	Failed     int                         `json:"failed"`
	Skipped    int                         `json:"skipped"`
	Closed     bool                        `json:"closed"`
	Recipients []deliveryRecipientResponse `json:"recipients"`
}

type batchItemResponse struct {
	EventID       string   `json:"eventId"`
	Title         string   `json:"title"`
	Reason        string   `json:"reason,omitempty"`
	RemindersSent int      `json:"remindersSent,omitempty"`
	Notified      []string `json:"notified,omitempty"`
}

type batchResultResponse struct {
	Successful []batchItemResponse `json:"successful"`
	Failed     []batchItemResponse `json:"failed"`
	Skipped    []batchItemResponse `json:"skipped"`
	Summary    string              `json:"summary"`
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Create(r.Context(), organizerID, event.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           domain.EventType(req.Type),
		Deadline:       req.Deadline,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := createEventResponse{
		Event:            toEventResponse(*result.Event),
		Recipients:       toRecipientResponses(result.Recipients, nil),
		ContributorToken: result.ContributorToken,
		JoinToken:        result.JoinToken,
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), organizerID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]eventListItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, eventListItemResponse{
			Event:             toEventResponse(item.Event),
			RecipientCount:    item.RecipientCount,
			ContributionCount: item.ContributionCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": resp})
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), organizerID, eventID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, eventViewResponse{
		Event:             toEventResponse(*view.Event),
		Recipients:        toRecipientResponses(view.Recipients, view.CountsByRecipient),
		ContributionCount: view.ContributionCount,
	})
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), organizerID, eventID); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Close handles POST /events/{id}/close.
func (h *EventHandler) Close(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	ev, err := h.svc.Close(r.Context(), organizerID, eventID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": toEventResponse(*ev)})
}

// ExtendDeadline handles POST /events/{id}/deadline.
func (h *EventHandler) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req deadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev, err := h.svc.ExtendDeadline(r.Context(), organizerID, eventID, req.Deadline)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": toEventResponse(*ev)})
}

// Send handles POST /events/{id}/send.
func (h *EventHandler) Send(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	report, err := h.svc.SendKeepsakeBooks(r.Context(), organizerID, eventID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := deliveryReportResponse{
		EventID: report.EventID.String(),
		Sent:    report.Sent,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		Closed:  report.Closed,
	}
	for _, rd := range report.Recipients {
		resp.Recipients = append(resp.Recipients, deliveryRecipientResponse{
			RecipientID: rd.RecipientID.String(),
			Name:        rd.Name,
			Email:       rd.Email,
			Status:      string(rd.Status),
			MessageID:   rd.MessageID,
			Reason:      rd.Reason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchDeadline handles POST /events/batch/deadline.
func (h *EventHandler) BatchDeadline(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req batchDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ExtendDeadlines(r.Context(), organizerID, req.EventIDs, req.Deadline)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(result))
}

// BatchReminders handles POST /events/batch/reminders.
func (h *EventHandler) BatchReminders(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req batchRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.SendReminders(r.Context(), organizerID, req.EventIDs, req.Message)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(result))
}

// requireUser pulls the authenticated user from the request context or
// writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path segment or writes a 404. A malformed id can
// never name an existing resource.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

func toEventResponse(ev domain.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID.String(),
		Title:       ev.Title,
		Description: ev.Description,
		Type:        ev.Type.String(),
		Status:      ev.Status.String(),
		Deadline:    ev.Deadline,
		CreatedAt:   ev.CreatedAt,
	}
}

func toRecipientResponses(recipients []domain.Recipient, counts map[uuid.UUID]int) []recipientResponse {
	resp := make([]recipientResponse, 0, len(recipients))
	for _, rcpt := range recipients {
		resp = append(resp, recipientResponse{
			ID:            rcpt.ID.String(),
			Name:          rcpt.Name,
			Email:         rcpt.Email,
			Contributions: counts[rcpt.ID],
		})
	}
	return resp
}

func toBatchResponse(result *event.BatchResult) batchResultResponse {
	resp := batchResultResponse{
		Successful: []batchItemResponse{},
		Failed:     []batchItemResponse{},
		Skipped:    []batchItemResponse{},
		Summary:    result.Summary,
	}
	convert := func(items []event.BatchItem) []batchItemResponse {
		out := make([]batchItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, batchItemResponse{
				EventID:       item.EventID.String(),
				Title:         item.Title,
				Reason:        item.Reason,
				RemindersSent: item.RemindersSent,
				Notified:      item.Notified,
			})
		}
		return out
	}
	resp.Successful = convert(result.Successful)
	resp.Failed = convert(result.Failed)
	resp.Skipped = convert(result.Skipped)
	return resp
}
