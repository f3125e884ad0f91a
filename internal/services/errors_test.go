package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"janitor/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "plex", "delete item", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"plex", "delete item", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	if err := services.Wrap(nil, "", "", "", nil); !errors.Is(err, services.ErrTransient) || !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected default wrap %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err   error
		label string
	}{
		{err: nil, label: "ok"},
		{err: services.Wrap(services.ErrConfiguration, "qbittorrent", "login", "rejected", nil), label: "configuration"},
		{err: services.Wrap(services.ErrNotFound, "plex", "delete item", "404", nil), label: "not_found"},
		{err: services.Wrap(services.ErrTimeout, "plex", "list sections", "", nil), label: "timeout"},
		{err: errors.New("connection refused"), label: "transient"},
	}
	for _, tc := range tests {
		label, hint := services.Classify(tc.err)
		if label != tc.label {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, label, tc.label)
		}
		if tc.err != nil && hint == "" {
			t.Fatalf("expected hint for %v", tc.err)
		}
	}
}

func TestTransportMarker(t *testing.T) {
	if marker := services.TransportMarker(context.DeadlineExceeded); marker != services.ErrTimeout {
		t.Fatalf("expected timeout marker, got %v", marker)
	}
	if marker := services.TransportMarker(errors.New("connection refused")); marker != services.ErrTransient {
		t.Fatalf("expected transient marker, got %v", marker)
	}
}
