// Package clausewitz parses the brace-structured KEY = VALUE configuration
// dialect used throughout Paradox grand strategy titles, either into a
// generic value tree (ParseValue) or directly into a user-declared Go type
// (ParseAs), per spec §6's external interface.
package clausewitz

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/decode"
	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/value"
)

// ParseValue constructs a borrowed value tree from source (spec §6's
// parse_value). The returned Value holds slices into source; call
// Value.Owned if it must outlive source.
func ParseValue(source string) (value.Value, error) {
	r := reader.New(source)
	v, err := value.Parse(r)
	if err != nil {
		return value.Value{}, err.WithContext(source, 2)
	}
	return v, nil
}

// ParseAs deserializes source directly into a T, schema-directed (spec §6's
// parse_as<T>). T must be a struct; use a pointer receiver's Elem type, not
// a pointer, as the type parameter.
func ParseAs[T any](source string) (T, error) {
	var out T
	r := reader.New(source)
	if err := decode.Into(r, &out); err != nil {
		var zero T
		return zero, err.WithContext(source, 2)
	}
	return out, nil
}

// Dump pretty-prints a Value for debugging, delegating to
// github.com/alecthomas/repr.
func Dump(v value.Value) string {
	return v.Dump()
}

// Session batches parses of several independent named sources (e.g. one per
// file in a mod directory) and aggregates their errors, in the manner of
// the teacher's SQLCodeParseErrors aggregate (clzerr.MultiError). Each
// failure is tagged with a per-session correlation id so multiple
// concurrent Sessions' log lines can be told apart.
type Session struct {
	id uuid.UUID

	mu     sync.Mutex
	errors clzerr.MultiError
}

// NewSession creates a Session with a fresh correlation id.
func NewSession() *Session {
	id, err := uuid.NewV4()
	if err != nil {
		// uuid.NewV4 only fails if crypto/rand is broken; fall back to the
		// nil UUID rather than propagating an error from a constructor.
		id = uuid.Nil
	}
	return &Session{id: id}
}

// ID returns the session's correlation id, suitable for a logrus field in
// callers that log alongside clausewitz errors.
func (s *Session) ID() string {
	return s.id.String()
}

// ParseValue parses source (associated with name for error reporting) and
// records any failure against the session's error set.
func (s *Session) ParseValue(name, source string) (value.Value, error) {
	r := reader.New(source)
	v, err := value.Parse(r)
	if err != nil {
		err = err.WithContext(source, 2)
		s.record(name, err)
		return value.Value{}, fmt.Errorf("session %s: %w", s.id, err)
	}
	return v, nil
}

// ParseAs parses source into out (a pointer to a struct), recording any
// failure against the session's error set.
func (s *Session) ParseAs(name, source string, out any) error {
	r := reader.New(source)
	if derr := decode.Into(r, out); derr != nil {
		derr = derr.WithContext(source, 2)
		s.record(name, derr)
		return fmt.Errorf("session %s: %w", s.id, derr)
	}
	return nil
}

func (s *Session) record(name string, err *clzerr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors.Add(name, err)
}

// Errors returns every error recorded so far against this session.
func (s *Session) Errors() clzerr.MultiError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}
