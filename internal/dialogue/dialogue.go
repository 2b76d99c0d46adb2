package dialogue

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message exchange unit: the user's text or the assistant's
// reply. Turns are immutable once stored.
type Turn struct {
	Role      string
	Text      string
	CreatedAt time.Time
}

// ErrStorageUnavailable wraps any backend I/O failure. A failed append must
// never be mistaken for a committed one.
var ErrStorageUnavailable = errors.New("dialogue storage unavailable")

// Store persists per-user dialogue history. Load returns retained turns
// oldest first and an empty slice for unknown users. Append applies the
// truncation budget after writing. Implementations must keep operations for
// a single user in program order even under concurrent access.
type Store interface {
	Load(ctx context.Context, userID int64) ([]Turn, error)
	Append(ctx context.Context, userID int64, role, text string) error
	Reset(ctx context.Context, userID int64) error
}

// Budget bounds the retained history per user. Zero fields mean unlimited.
type Budget struct {
	MaxTurns int
	MaxChars int
}

// start returns the index of the first turn retained under the budget,
// discarding from the oldest end. The newest turn is always kept, even when
// it alone exceeds MaxChars.
func (b Budget) start(turns []Turn) int {
	i := 0
	if b.MaxTurns > 0 && len(turns) > b.MaxTurns {
		i = len(turns) - b.MaxTurns
	}
	if b.MaxChars > 0 {
		total := 0
		for _, t := range turns[i:] {
			total += utf8.RuneCountInString(t.Text)
		}
		for i < len(turns)-1 && total > b.MaxChars {
			total -= utf8.RuneCountInString(turns[i].Text)
			i++
		}
	}
	return i
}
