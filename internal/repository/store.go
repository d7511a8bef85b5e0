package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("record conflicts with existing data")
	// ErrStaleState is returned when a guarded update finds the record
	// no longer in the expected state.
	ErrStaleState = errors.New("record is not in the expected state")
	// ErrStoreNotConfigured is returned by Ready when no backend is wired.
	ErrStoreNotConfigured = errors.New("document store not configured")
)

// Repositories bundles one repository per collection.
type Repositories struct {
	Users         UserRepository
	Categories    CategoryRepository
	Tickets       TicketRepository
	Comments      CommentRepository
	Votes         VoteRepository
	Notifications NotificationRepository
	Promotions    PromotionRepository
}

// Store is the document store boundary. WithinTx runs fn against
// repositories whose writes commit together or not at all.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ready() error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewPostgresStore returns a Store backed by pgx. A nil pool yields a store
// whose Ready reports ErrStoreNotConfigured.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	s := &postgresStore{pool: pool}
	if pool != nil {
		s.repos = newPostgresRepositories(pool)
	}
	return s
}

func newPostgresRepositories(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Categories:    NewCategoryRepository(db),
		Tickets:       NewTicketRepository(db),
		Comments:      NewCommentRepository(db),
		Votes:         NewVoteRepository(db),
		Notifications: NewNotificationRepository(db),
		Promotions:    NewPromotionRepository(db),
	}
}

func (s *postgresStore) Repos() Repositories {
	return s.repos
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	if s.pool == nil {
		return ErrStoreNotConfigured
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, newPostgresRepositories(tx))
	})
}

func (s *postgresStore) Ready() error {
	if s.pool == nil {
		return ErrStoreNotConfigured
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
