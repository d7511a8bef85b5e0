package memory

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type commentRepository struct {
	v view
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.v.write(func(st *state) error {
		comment.ID = newID()
		comment.CreatedAt = r.v.now()
		st.comments = append(st.comments, *comment)
		return nil
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var found *domain.Comment
	err := r.v.read(func(st *state) error {
		for _, comment := range st.comments {
			if comment.ID == id {
				c := comment
				found = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	err := r.v.read(func(st *state) error {
		for _, comment := range st.comments {
			if comment.TicketID == ticketID {
				result = append(result, comment)
			}
		}
		return nil
	})
	return result, err
}

func (r *commentRepository) CountByTickets(ctx context.Context, ticketIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(ticketIDs))
	err := r.v.read(func(st *state) error {
		for _, comment := range st.comments {
			if containsString(ticketIDs, comment.TicketID) {
				result[comment.TicketID]++
			}
		}
		return nil
	})
	return result, err
}
