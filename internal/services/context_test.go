package services_test

import (
	"context"
	"testing"

	"janitor/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPhase(ctx, "torrents")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "torrents" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithPhase(services.WithRunID(context.Background(), ""), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
}
