package services_test

import (
	"errors"
	"testing"

	"romcat/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrStore, "importer", "insert media", "m1234", cause)
	if !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected store classification, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := services.Wrap(nil, "importer", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{services.Wrap(services.ErrFormat, "datfile", "parse", "", nil), 2},
		{services.Wrap(services.ErrUnsafeField, "overrides", "apply", "work_id", nil), 2},
		{services.Wrap(services.ErrStore, "catalog", "tx", "", nil), 3},
		{errors.New("anything"), 1},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
