package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
	"github.com/heartmarshall/keepsake-backend/internal/service/contribution"
)

// contributionService defines the minimal interface needed by SessionHandler.
type contributionService interface {
	ResolveSession(ctx context.Context, token string) (*contribution.SessionView, error)
	ResolveByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*contribution.SessionView, error)
	JoinCircle(ctx context.Context, eventID uuid.UUID, joinToken string, input contribution.JoinInput) (*contribution.JoinResult, error)
	Submit(ctx context.Context, token string, recipientID uuid.UUID, input contribution.SubmitInput) (*contribution.SubmitResult, error)
	GetBook(ctx context.Context, accessToken string) (*contribution.BookView, error)
}

// SessionHandler serves the contributor-facing endpoints. These are token
// authenticated: possession of the opaque session token is the credential,
// no bearer token needed.
type SessionHandler struct {
	svc contributionService
	log *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc contributionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.With("handler", "session")}
}

type sessionEventResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Deadline time.Time `json:"deadline"`
}

type sessionRecipientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type contributorResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionViewResponse struct {
	Event       sessionEventResponse       `json:"event"`
	Recipients  []sessionRecipientResponse `json:"recipients"`
	Contributor *contributorResponse       `json:"contributor,omitempty"`
	ExpiresAt   time.Time                  `json:"expiresAt"`
}

type joinRequest struct {
	JoinToken string `json:"joinToken"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type joinResponse struct {
	ContributorToken string                   `json:"contributorToken"`
	User             userResponse             `json:"user"`
	Recipient        sessionRecipientResponse `json:"recipient"`
}

type submitRequest struct {
	ContributorName *string         `json:"contributorName,omitempty"`
	Content         string          `json:"content"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	Formatting      json.RawMessage `json:"formatting,omitempty"`
	Media           json.RawMessage `json:"media,omitempty"`
	Drawings        json.RawMessage `json:"drawings,omitempty"`
	Stickers        json.RawMessage `json:"stickers,omitempty"`
	Signature       json.RawMessage `json:"signature,omitempty"`
	AttachmentURLs  []string        `json:"attachmentUrls,omitempty"`
}

type submitResponse struct {
	ContributionID string   `json:"contributionId"`
	Updated        bool     `json:"updated"`
	Degraded       []string `json:"degradedFields,omitempty"`
}

// Resolve handles GET /sessions/{token}.
func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	view, err := h.svc.ResolveSession(r.Context(), token)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViewResponse(view))
}

// ResolveMine handles GET /events/{id}/session: a logged-in participant
// recovering their writing session without the tokenized link.
func (h *SessionHandler) ResolveMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.ResolveByUserAndEvent(r.Context(), userID, eventID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := toSessionViewResponse(view)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   view.Session.Token,
		"session": resp,
	})
}

// Join handles POST /events/{id}/join.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.JoinCircle(r.Context(), eventID, req.JoinToken, contribution.JoinInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, joinResponse{
		ContributorToken: result.ContributorToken,
		User: userResponse{
			ID:    result.User.ID.String(),
			Email: result.User.Email,
			Name:  result.User.Name,
		},
		Recipient: sessionRecipientResponse{
			ID:   result.Recipient.ID.String(),
			Name: result.Recipient.Name,
		},
	})
}

// Submit handles PUT /sessions/{token}/recipients/{recipientID}.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	recipientID, ok := pathUUID(w, r, "recipientID")
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Submit(r.Context(), token, recipientID, contribution.SubmitInput{
		ContributorName: req.ContributorName,
		Content:         req.Content,
		BackgroundColor: req.BackgroundColor,
		Raw: domain.RawContent{
			Formatting: req.Formatting,
			Media:      req.Media,
			Drawings:   req.Drawings,
			Stickers:   req.Stickers,
			Signature:  req.Signature,
		},
		AttachmentURLs: req.AttachmentURLs,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	status := http.StatusCreated
	if result.IsUpdate {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{
		ContributionID: result.Contribution.ID.String(),
		Updated:        result.IsUpdate,
		Degraded:       result.Degraded,
	})
}

func toSessionViewResponse(view *contribution.SessionView) sessionViewResponse {
	resp := sessionViewResponse{
		Event: sessionEventResponse{
			ID:       view.Event.ID.String(),
			Title:    view.Event.Title,
			Type:     view.Event.Type.String(),
			Deadline: view.Event.Deadline,
		},
		Recipients: make([]sessionRecipientResponse, 0, len(view.Recipients)),
		ExpiresAt:  view.Session.ExpiresAt,
	}
	for _, rcpt := range view.Recipients {
		resp.Recipients = append(resp.Recipients, sessionRecipientResponse{
			ID:        rcpt.ID.String(),
			Name:      rcpt.Name,
			Completed: view.Session.HasCompleted(rcpt.ID),
		})
	}
	if view.Contributor != nil {
		resp.Contributor = &contributorResponse{
			Name:  view.Contributor.Name,
			Email: view.Contributor.Email,
		}
	}
	return resp
}
