package dialogue

import (
	"context"
	"testing"
)

func TestMemoryStore_TurnBudgetKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Budget{MaxTurns: 3})
	userID := int64(1)

	for _, text := range []string{"A", "B", "C", "D"} {
		if err := s.Append(ctx, userID, RoleUser, text); err != nil {
			t.Fatalf("append %s: %v", text, err)
		}
	}

	turns, err := s.Load(ctx, userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("want 3 turns, got %d", len(turns))
	}
	for i, want := range []string{"B", "C", "D"} {
		if turns[i].Text != want {
			t.Fatalf("turn %d: want %q, got %q", i, want, turns[i].Text)
		}
	}
}

func TestMemoryStore_CharBudgetNeverDropsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Budget{MaxChars: 5})
	userID := int64(1)

	if err := s.Append(ctx, userID, RoleUser, "aaaa"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, userID, RoleAssistant, "bbbbbbbbbb"); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := s.Load(ctx, userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 1 || turns[0].Text != "bbbbbbbbbb" {
		t.Fatalf("newest turn must survive even over budget: %+v", turns)
	}
}

func TestMemoryStore_ResetAndUnknownUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Budget{MaxTurns: 10})

	turns, err := s.Load(ctx, 404)
	if err != nil {
		t.Fatalf("load unknown: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("unknown user must have empty history, got %d", len(turns))
	}

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, 1, RoleUser, "hi"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.Reset(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	turns, err = s.Load(ctx, 1)
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("reset did not clear history: %d turns", len(turns))
	}
}

func TestMemoryStore_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Budget{MaxTurns: 10})

	if err := s.Append(ctx, 1, RoleUser, "one"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, 2, RoleUser, "two"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Reset(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}

	turns, _ := s.Load(ctx, 2)
	if len(turns) != 1 || turns[0].Text != "two" {
		t.Fatalf("reset leaked across users: %+v", turns)
	}
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Budget{})

	if err := s.Append(ctx, 1, RoleUser, "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	turns, _ := s.Load(ctx, 1)
	turns[0].Text = "mutated"

	again, _ := s.Load(ctx, 1)
	if again[0].Text != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}
}
