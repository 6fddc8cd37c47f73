package services_test

import (
	"context"
	"testing"

	"artreview/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEntryID(ctx, 42)
	ctx = services.WithSessionID(ctx, "session-1")
	ctx = services.WithArtType(ctx, "poster")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.EntryIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected entry id: %v %v", id, ok)
	}
	if sid, ok := services.SessionIDFromContext(ctx); !ok || sid != "session-1" {
		t.Fatalf("unexpected session id: %v %v", sid, ok)
	}
	if art, ok := services.ArtTypeFromContext(ctx); !ok || art != "poster" {
		t.Fatalf("unexpected art type: %v %v", art, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "")
	ctx = services.WithArtType(ctx, "")
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session id")
	}
	if _, ok := services.ArtTypeFromContext(ctx); ok {
		t.Fatal("expected no art type")
	}
	if _, ok := services.EntryIDFromContext(ctx); ok {
		t.Fatal("expected no entry id")
	}
}
