package memory

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepository struct {
	v view
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.v.write(func(st *state) error {
		now := r.v.now()
		ticket.ID = newID()
		ticket.Upvotes = 0
		ticket.Downvotes = 0
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		st.tickets = append(st.tickets, *ticket)
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.v.write(func(st *state) error {
		idx := indexTicket(st, ticket.ID)
		if idx < 0 {
			return repository.ErrNotFound
		}
		stored := st.tickets[idx]
		stored.Subject = ticket.Subject
		stored.Description = ticket.Description
		stored.Status = ticket.Status
		stored.Priority = ticket.Priority
		stored.CategoryID = ticket.CategoryID
		stored.AssigneeID = ticket.AssigneeID
		stored.UpdatedAt = r.v.now()
		st.tickets[idx] = stored
		ticket.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var found domain.Ticket
	err := r.v.read(func(st *state) error {
		idx := indexTicket(st, id)
		if idx < 0 {
			return repository.ErrNotFound
		}
		found = st.tickets[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *ticketRepository) List(ctx context.Context, q repository.TicketQuery) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	err := r.v.read(func(st *state) error {
		for _, ticket := range st.tickets {
			if q.OwnerID != nil && ticket.OwnerID != *q.OwnerID {
				continue
			}
			if q.Status != nil && ticket.Status != *q.Status {
				continue
			}
			if q.CategoryID != nil && (ticket.CategoryID == nil || *ticket.CategoryID != *q.CategoryID) {
				continue
			}
			result = append(result, ticket)
		}
		return nil
	})
	return result, err
}

func (r *ticketRepository) SetVoteCounts(ctx context.Context, id string, tally domain.VoteTally) error {
	return r.v.write(func(st *state) error {
		idx := indexTicket(st, id)
		if idx < 0 {
			return repository.ErrNotFound
		}
		st.tickets[idx].Upvotes = tally.Upvotes
		st.tickets[idx].Downvotes = tally.Downvotes
		return nil
	})
}

func indexTicket(st *state, id string) int {
	for i := range st.tickets {
		if st.tickets[i].ID == id {
			return i
		}
	}
	return -1
}
