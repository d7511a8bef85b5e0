package memory

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type voteRepository struct {
	v view
}

func (r *voteRepository) GetByUserAndTicket(ctx context.Context, userID, ticketID string) (*domain.Vote, error) {
	var found *domain.Vote
	err := r.v.read(func(st *state) error {
		for _, vote := range st.votes {
			if vote.UserID == userID && vote.TicketID == ticketID {
				v := vote
				found = &v
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) error {
	return r.v.write(func(st *state) error {
		for i := range st.votes {
			if st.votes[i].UserID == vote.UserID && st.votes[i].TicketID == vote.TicketID {
				st.votes[i].Type = vote.Type
				*vote = st.votes[i]
				return nil
			}
		}
		vote.ID = newID()
		vote.CreatedAt = r.v.now()
		st.votes = append(st.votes, *vote)
		return nil
	})
}

func (r *voteRepository) TallyByTicket(ctx context.Context, ticketID string) (domain.VoteTally, error) {
	var tally domain.VoteTally
	err := r.v.read(func(st *state) error {
		for _, vote := range st.votes {
			if vote.TicketID != ticketID {
				continue
			}
			switch vote.Type {
			case domain.VoteUp:
				tally.Upvotes++
			case domain.VoteDown:
				tally.Downvotes++
			}
		}
		return nil
	})
	return tally, err
}
