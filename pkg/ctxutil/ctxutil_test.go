package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserID_RoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for a stored user ID")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestUserID_AbsentAndNil(t *testing.T) {
	t.Parallel()

	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Fatal("expected ok=false for an empty context")
	}

	// uuid.Nil counts as anonymous even when explicitly stored.
	ctx := WithUserID(context.Background(), uuid.Nil)
	if got, ok := UserIDFromCtx(ctx); ok || got != uuid.Nil {
		t.Fatalf("expected (uuid.Nil, false), got (%s, %v)", got, ok)
	}
}

func TestUserID_WrongValueType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), userIDKey{}, "not-a-uuid")

	if got, ok := UserIDFromCtx(ctx); ok || got != uuid.Nil {
		t.Fatalf("expected (uuid.Nil, false), got (%s, %v)", got, ok)
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Fatalf("expected req-123, got %s", got)
	}
}

func TestRequestID_AbsentOrWrongType(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}

	ctx := context.WithValue(context.Background(), requestIDKey{}, 12345)
	if got := RequestIDFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}
