package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// VoteRepository stores per-user ticket votes.
type VoteRepository interface {
	GetByUserAndTicket(ctx context.Context, userID, ticketID string) (*domain.Vote, error)
	// Upsert stores the user's vote on the ticket, overwriting the type of
	// an existing one. vote is filled with the stored row.
	Upsert(ctx context.Context, vote *domain.Vote) error
	TallyByTicket(ctx context.Context, ticketID string) (domain.VoteTally, error)
}

type voteRepository struct {
	db DBTX
}

// NewVoteRepository builds repository.
func NewVoteRepository(db DBTX) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetByUserAndTicket(ctx context.Context, userID, ticketID string) (*domain.Vote, error) {
	const query = `
        SELECT id, ticket_id, user_id, vote_type, created_at
        FROM votes WHERE user_id=$1 AND ticket_id=$2`
	var vote domain.Vote
	if err := r.db.QueryRow(ctx, query, userID, ticketID).Scan(
		&vote.ID,
		&vote.TicketID,
		&vote.UserID,
		&vote.Type,
		&vote.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) error {
	const query = `
        INSERT INTO votes (ticket_id, user_id, vote_type)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, user_id) DO UPDATE SET vote_type = EXCLUDED.vote_type
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, vote.TicketID, vote.UserID, vote.Type).Scan(&vote.ID, &vote.CreatedAt)
	return translate(err)
}

func (r *voteRepository) TallyByTicket(ctx context.Context, ticketID string) (domain.VoteTally, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE vote_type='upvote'),
               COUNT(*) FILTER (WHERE vote_type='downvote')
        FROM votes WHERE ticket_id=$1`
	var tally domain.VoteTally
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(&tally.Upvotes, &tally.Downvotes); err != nil {
		return domain.VoteTally{}, err
	}
	return tally, nil
}
