package apperr

import (
	"errors"
	"testing"
)

func TestInternalKeepsExistingKind(t *testing.T) {
	conflict := Conflictf("email %q already registered", "a@b.c")
	if got := Internal(conflict); !errors.Is(got, ErrConflict) || errors.Is(got, ErrInternal) {
		t.Fatalf("expected conflict to pass through, got %v", got)
	}

	raw := errors.New("connection reset")
	got := Internal(raw)
	if !errors.Is(got, ErrInternal) {
		t.Fatalf("expected internal, got %v", got)
	}
	if Internal(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{NotFoundf("event %s", "e1"), ErrNotFound},
		{Validationf("bad window"), ErrValidation},
		{Forbiddenf("admin only"), ErrForbidden},
		{errors.New("plain"), nil},
		{nil, nil},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
