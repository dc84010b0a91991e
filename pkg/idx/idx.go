// Package idx mints and validates the ULID identifiers used for users and
// capsules.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a canonical (upper-case) 26 character ULID.
type ID string

var ErrInvalid = errors.New("idx: invalid ulid")

// Ids minted within the same millisecond still sort in creation order.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID stamped with the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t, so a record's id and created_at can
// carry the same instant.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// Parse validates s and returns it in canonical form. Surrounding
// whitespace is ignored.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return ID(strings.ToUpper(s)), nil
}

// ParseList splits a comma-delimited list of ULIDs. Order and duplicates are
// kept as given. Blank input yields an empty, non-nil slice; any malformed
// entry, including an empty one from a stray comma, fails the whole list.
func ParseList(s string) ([]ID, error) {
	out := []ID{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for part := range strings.SplitSeq(s, ",") {
		id, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (id ID) String() string { return string(id) }
