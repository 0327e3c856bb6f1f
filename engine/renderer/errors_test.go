package renderer

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifySurfaceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "lost surface", err: errors.New("Surface Lost"), want: ErrSurfaceLost},
		{name: "device lost", err: errors.New("unexpected status: DeviceLost"), want: ErrSurfaceLost},
		{name: "outdated surface", err: errors.New("unexpected status: Outdated"), want: ErrSurfaceOutdated},
		{name: "timeout status", err: errors.New("unexpected status: Timeout"), want: ErrSurfaceTimeout},
		{name: "timed out text", err: errors.New("surface acquisition timed out"), want: ErrSurfaceTimeout},
		{name: "out of memory spaced", err: errors.New("device Out Of Memory"), want: ErrOutOfMemory},
		{name: "out of memory status", err: errors.New("unexpected status: OutOfMemory"), want: ErrOutOfMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySurfaceError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classifySurfaceError(%q) = %v, want %v", tt.err, got, tt.want)
			}
			if !strings.Contains(got.Error(), tt.err.Error()) {
				t.Fatalf("classified error %q lost the original text %q", got, tt.err)
			}
		})
	}
}

func TestClassifySurfaceErrorPassesUnknownThrough(t *testing.T) {
	original := errors.New("validation error in command encoding")
	got := classifySurfaceError(original)
	if got != original {
		t.Fatalf("unknown error was rewritten: got %v, want %v", got, original)
	}
	for _, sentinel := range []error{ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrOutOfMemory} {
		if errors.Is(got, sentinel) {
			t.Fatalf("unknown error matched sentinel %v", sentinel)
		}
	}
}

func TestClassifySurfaceErrorNil(t *testing.T) {
	if got := classifySurfaceError(nil); got != nil {
		t.Fatalf("classifySurfaceError(nil) = %v, want nil", got)
	}
}
