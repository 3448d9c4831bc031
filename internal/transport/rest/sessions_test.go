package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
	"github.com/heartmarshall/keepsake-backend/internal/service/contribution"
)

type contributionServiceMock struct {
	ResolveSessionFunc        func(ctx context.Context, token string) (*contribution.SessionView, error)
	ResolveByUserAndEventFunc func(ctx context.Context, userID, eventID uuid.UUID) (*contribution.SessionView, error)
	JoinCircleFunc            func(ctx context.Context, eventID uuid.UUID, joinToken string, input contribution.JoinInput) (*contribution.JoinResult, error)
	SubmitFunc                func(ctx context.Context, token string, recipientID uuid.UUID, input contribution.SubmitInput) (*contribution.SubmitResult, error)
	GetBookFunc               func(ctx context.Context, accessToken string) (*contribution.BookView, error)
}

func (m *contributionServiceMock) ResolveSession(ctx context.Context, token string) (*contribution.SessionView, error) {
	return m.ResolveSessionFunc(ctx, token)
}

func (m *contributionServiceMock) ResolveByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*contribution.SessionView, error) {
	return m.ResolveByUserAndEventFunc(ctx, userID, eventID)
}

func (m *contributionServiceMock) JoinCircle(ctx context.Context, eventID uuid.UUID, joinToken string, input contribution.JoinInput) (*contribution.JoinResult, error) {
	return m.JoinCircleFunc(ctx, eventID, joinToken, input)
}

func (m *contributionServiceMock) Submit(ctx context.Context, token string, recipientID uuid.UUID, input contribution.SubmitInput) (*contribution.SubmitResult, error) {
	return m.SubmitFunc(ctx, token, recipientID, input)
}

func (m *contributionServiceMock) GetBook(ctx context.Context, accessToken string) (*contribution.BookView, error) {
	return m.GetBookFunc(ctx, accessToken)
}

func sessionMux(h *SessionHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions/{token}", h.Resolve)
	mux.HandleFunc("POST /events/{id}/join", h.Join)
	mux.HandleFunc("PUT /sessions/{token}/recipients/{recipientID}", h.Submit)
	mux.HandleFunc("GET /books/{accessToken}", h.Book)
	return mux
}

func TestSessionResolve(t *testing.T) {
	t.Parallel()

	t.Run("success shows recipients with completion", func(t *testing.T) {
		t.Parallel()

		doneID := uuid.New()
		pendingID := uuid.New()
		view := &contribution.SessionView{
			Session: &domain.ContributorSession{
				Token:               "tok",
				ExpiresAt:           time.Now().Add(time.Hour),
				CompletedRecipients: []uuid.UUID{doneID},
			},
			Event: &domain.Event{
				ID:    uuid.New(),
				Title: "Team Offsite Notes",
				Type:  domain.EventTypeCircleNotes,
			},
			Recipients: []domain.Recipient{
				{ID: doneID, Name: "Done"},
				{ID: pendingID, Name: "Pending"},
			},
		}
		svc := &contributionServiceMock{
			ResolveSessionFunc: func(_ context.Context, token string) (*contribution.SessionView, error) {
				assert.Equal(t, "tok", token)
				return view, nil
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/sessions/tok", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp sessionViewResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Recipients, 2)
		assert.True(t, resp.Recipients[0].Completed)
		assert.False(t, resp.Recipients[1].Completed)
		assert.Nil(t, resp.Contributor)
	})

	t.Run("expired is 410", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			ResolveSessionFunc: func(_ context.Context, _ string) (*contribution.SessionView, error) {
				return nil, fmt.Errorf("resolve: %w", domain.ErrExpired)
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/sessions/old-token", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("closed event is 410", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			ResolveSessionFunc: func(_ context.Context, _ string) (*contribution.SessionView, error) {
				return nil, fmt.Errorf("resolve: %w", domain.ErrEventClosed)
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/sessions/tok", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("unknown token is 404", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			ResolveSessionFunc: func(_ context.Context, _ string) (*contribution.SessionView, error) {
				return nil, fmt.Errorf("resolve: %w", domain.ErrNotFound)
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessionJoin(t *testing.T) {
	t.Parallel()
	eventID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			JoinCircleFunc: func(_ context.Context, gotEvent uuid.UUID, joinToken string, input contribution.JoinInput) (*contribution.JoinResult, error) {
				assert.Equal(t, eventID, gotEvent)
				assert.Equal(t, "join-tok", joinToken)
				assert.Equal(t, "riley@example.com", input.Email)
				return &contribution.JoinResult{
					ContributorToken: "personal-tok",
					User:             &domain.User{ID: uuid.New(), Name: "Riley", Email: "riley@example.com"},
					Recipient:        &domain.Recipient{ID: uuid.New(), Name: "Riley"},
				}, nil
			},
		}
		h := NewSessionHandler(svc, testLogger())

		body, _ := json.Marshal(map[string]string{
			"joinToken": "join-tok",
			"name":      "Riley",
			"email":     "riley@example.com",
			"password":  "hunter2hunter2",
		})
		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.String()+"/join", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp joinResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "personal-tok", resp.ContributorToken)
	})

	t.Run("identity collision is 409", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			JoinCircleFunc: func(_ context.Context, _ uuid.UUID, _ string, _ contribution.JoinInput) (*contribution.JoinResult, error) {
				return nil, fmt.Errorf("join: %w", domain.ErrConflict)
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.String()+"/join", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestSessionSubmit(t *testing.T) {
	t.Parallel()
	recipientID := uuid.New()

	t.Run("create is 201, update is 200", func(t *testing.T) {
		t.Parallel()

		for _, isUpdate := range []bool{false, true} {
			svc := &contributionServiceMock{
				SubmitFunc: func(_ context.Context, token string, gotRcpt uuid.UUID, input contribution.SubmitInput) (*contribution.SubmitResult, error) {
					assert.Equal(t, "tok", token)
					assert.Equal(t, recipientID, gotRcpt)
					assert.Equal(t, "Happy trails!", input.Content)
					return &contribution.SubmitResult{
						Contribution: &domain.Contribution{ID: uuid.New()},
						IsUpdate:     isUpdate,
					}, nil
				},
			}
			h := NewSessionHandler(svc, testLogger())

			body, _ := json.Marshal(map[string]any{"content": "Happy trails!"})
			req := httptest.NewRequest(http.MethodPut,
				"/sessions/tok/recipients/"+recipientID.String(), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			sessionMux(h).ServeHTTP(rec, req)

			want := http.StatusCreated
			if isUpdate {
				want = http.StatusOK
			}
			require.Equal(t, want, rec.Code)
		}
	})

	t.Run("structured fields pass through raw", func(t *testing.T) {
		t.Parallel()

		var gotRaw domain.RawContent
		svc := &contributionServiceMock{
			SubmitFunc: func(_ context.Context, _ string, _ uuid.UUID, input contribution.SubmitInput) (*contribution.SubmitResult, error) {
				gotRaw = input.Raw
				return &contribution.SubmitResult{
					Contribution: &domain.Contribution{ID: uuid.New()},
					Degraded:     []string{"drawings"},
				}, nil
			},
		}
		h := NewSessionHandler(svc, testLogger())

		body := `{"content":"hi","formatting":{"bold":true},"drawings":"garbage"}`
		req := httptest.NewRequest(http.MethodPut,
			"/sessions/tok/recipients/"+recipientID.String(), bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"bold":true}`, string(gotRaw.Formatting))
		assert.Equal(t, `"garbage"`, string(gotRaw.Drawings))

		var resp submitResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, []string{"drawings"}, resp.Degraded)
	})

	t.Run("forbidden join token is 403", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			SubmitFunc: func(_ context.Context, _ string, _ uuid.UUID, _ contribution.SubmitInput) (*contribution.SubmitResult, error) {
				return nil, fmt.Errorf("submit: %w", domain.ErrForbidden)
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodPut,
			"/sessions/join-tok/recipients/"+recipientID.String(), bytes.NewBufferString(`{"content":"x"}`))
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestBook(t *testing.T) {
	t.Parallel()

	t.Run("success returns pages in order", func(t *testing.T) {
		t.Parallel()

		name := "Riley"
		book := &contribution.BookView{
			Event: &domain.Event{
				ID:     uuid.New(),
				Title:  "Farewell for Sam",
				Type:   domain.EventTypeIndividualTribute,
				Status: domain.EventStatusClosed,
			},
			Recipient: &domain.Recipient{ID: uuid.New(), Name: "Sam"},
			Contributions: []domain.Contribution{
				{ID: uuid.New(), ContributorName: &name, Content: "first note"},
				{ID: uuid.New(), Content: "second note"},
			},
		}
		svc := &contributionServiceMock{
			GetBookFunc: func(_ context.Context, accessToken string) (*contribution.BookView, error) {
				assert.Equal(t, "book-tok", accessToken)
				return book, nil
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/books/book-tok", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp bookResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Sam", resp.RecipientName)
		assert.True(t, resp.Event.Closed)
		require.Len(t, resp.Pages, 2)
		assert.Equal(t, "first note", resp.Pages[0].Content)
		require.NotNil(t, resp.Pages[0].ContributorName)
		assert.Equal(t, "Riley", *resp.Pages[0].ContributorName)
		assert.Nil(t, resp.Pages[1].ContributorName)
	})

	t.Run("unknown token is 404", func(t *testing.T) {
		t.Parallel()

		svc := &contributionServiceMock{
			GetBookFunc: func(_ context.Context, _ string) (*contribution.BookView, error) {
				return nil, domain.ErrNotFound
			},
		}
		h := NewSessionHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/books/nope", nil)
		rec := httptest.NewRecorder()
		sessionMux(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
