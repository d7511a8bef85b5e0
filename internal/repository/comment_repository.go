package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	CountByTickets(ctx context.Context, ticketIDs []string) (map[string]int, error)
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `id, ticket_id, author_id, author_name, author_email, author_role, content, parent_id, created_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, author_name, author_email, author_role, content, parent_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.AuthorName,
		comment.AuthorEmail,
		comment.AuthorRole,
		comment.Content,
		comment.ParentID,
	).Scan(&comment.ID, &comment.CreatedAt)
	return translate(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+commentColumns+` FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) CountByTickets(ctx context.Context, ticketIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	const query = `SELECT ticket_id, COUNT(*) FROM comments WHERE ticket_id = ANY($1) GROUP BY ticket_id`
	rows, err := r.db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ticketID string
			count    int
		)
		if err := rows.Scan(&ticketID, &count); err != nil {
			return nil, err
		}
		result[ticketID] = count
	}
	return result, rows.Err()
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.AuthorEmail,
		&comment.AuthorRole,
		&comment.Content,
		&comment.ParentID,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}
