// Package memory is a process-local repository.Store. Collections keep
// insertion order so listings are stable across calls.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type state struct {
	users         []domain.User
	categories    []domain.Category
	tickets       []domain.Ticket
	comments      []domain.Comment
	votes         []domain.Vote
	notifications []domain.Notification
	promotions    []domain.PromotionRequest
}

func (s *state) clone() *state {
	return &state{
		users:         append([]domain.User(nil), s.users...),
		categories:    append([]domain.Category(nil), s.categories...),
		tickets:       append([]domain.Ticket(nil), s.tickets...),
		comments:      append([]domain.Comment(nil), s.comments...),
		votes:         append([]domain.Vote(nil), s.votes...),
		notifications: append([]domain.Notification(nil), s.notifications...),
		promotions:    append([]domain.PromotionRequest(nil), s.promotions...),
	}
}

// Store keeps every collection in memory. Writes inside WithinTx go to a
// private copy of the state that replaces the shared one only when fn
// succeeds. txMu serializes writers; mu guards the shared pointer.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: &state{}, now: time.Now}
}

// SetClock replaces the timestamp source. Call before first use.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Repos returns repositories that operate on the shared state.
func (s *Store) Repos() repository.Repositories {
	return s.repositories(&sharedView{store: s})
}

// WithinTx runs fn against a snapshot and publishes it when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	draft := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.repositories(&txView{store: s, data: draft})); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = draft
	s.mu.Unlock()
	return nil
}

// Ready always succeeds.
func (s *Store) Ready() error {
	return nil
}

func (s *Store) repositories(v view) repository.Repositories {
	return repository.Repositories{
		Users:         &userRepository{v: v},
		Categories:    &categoryRepository{v: v},
		Tickets:       &ticketRepository{v: v},
		Comments:      &commentRepository{v: v},
		Votes:         &voteRepository{v: v},
		Notifications: &notificationRepository{v: v},
		Promotions:    &promotionRepository{v: v},
	}
}

// view hides whether a repository reads the shared state or a tx draft.
type view interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	now() time.Time
}

type sharedView struct {
	store *Store
}

func (v *sharedView) read(fn func(st *state) error) error {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.data)
}

// write copies the state so a failing fn leaves nothing behind.
func (v *sharedView) write(fn func(st *state) error) error {
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()

	v.store.mu.RLock()
	draft := v.store.data.clone()
	v.store.mu.RUnlock()

	if err := fn(draft); err != nil {
		return err
	}

	v.store.mu.Lock()
	v.store.data = draft
	v.store.mu.Unlock()
	return nil
}

func (v *sharedView) now() time.Time {
	return v.store.now().UTC()
}

type txView struct {
	store *Store
	data  *state
}

func (v *txView) read(fn func(st *state) error) error {
	return fn(v.data)
}

func (v *txView) write(fn func(st *state) error) error {
	return fn(v.data)
}

func (v *txView) now() time.Time {
	return v.store.now().UTC()
}

func newID() string {
	return uuid.NewString()
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
