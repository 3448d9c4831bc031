package rest

import (
	"net/http"
	"time"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

type bookEventResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Deadline time.Time `json:"deadline"`
	Closed   bool      `json:"closed"`
}

type bookPageResponse struct {
	ID              string             `json:"id"`
	ContributorName *string            `json:"contributorName,omitempty"`
	Content         string             `json:"content"`
	Formatting      domain.Formatting  `json:"formatting"`
	Media           []domain.MediaItem `json:"media,omitempty"`
	Drawings        []domain.Drawing   `json:"drawings,omitempty"`
	Stickers        []domain.Sticker   `json:"stickers,omitempty"`
	Signature       *domain.Signature  `json:"signature,omitempty"`
	BackgroundColor string             `json:"backgroundColor,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

type bookResponse struct {
	Event         bookEventResponse  `json:"event"`
	RecipientName string             `json:"recipientName"`
	Pages         []bookPageResponse `json:"pages"`
}

// Book handles GET /books/{accessToken}: the renderer fetches a recipient's
// compiled book through the emailed access link. The access token is the
// only credential; the contributor emails never appear in the payload.
func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("accessToken")
	if token == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	book, err := h.svc.GetBook(r.Context(), token)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := bookResponse{
		Event: bookEventResponse{
			ID:       book.Event.ID.String(),
			Title:    book.Event.Title,
			Type:     book.Event.Type.String(),
			Deadline: book.Event.Deadline,
			Closed:   book.Event.IsClosed(),
		},
		RecipientName: book.Recipient.Name,
		Pages:         make([]bookPageResponse, 0, len(book.Contributions)),
	}
	for _, c := range book.Contributions {
		resp.Pages = append(resp.Pages, bookPageResponse{
			ID:              c.ID.String(),
			ContributorName: c.ContributorName,
			Content:         c.Content,
			Formatting:      c.Formatting,
			Media:           c.Media,
			Drawings:        c.Drawings,
			Stickers:        c.Stickers,
			Signature:       c.Signature,
			BackgroundColor: c.BackgroundColor,
			CreatedAt:       c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
