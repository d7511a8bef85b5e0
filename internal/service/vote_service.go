package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// VoteService records votes and keeps ticket counters in step with them.
type VoteService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// NewVoteService constructs the service.
func NewVoteService(store repository.Store, dispatcher events.Dispatcher) *VoteService {
	return &VoteService{store: store, dispatcher: dispatcher}
}

// Vote stores actor's vote on a ticket, replacing any earlier one, then
// recounts every vote on the ticket and writes the totals back.
func (s *VoteService) Vote(ctx context.Context, actor domain.Identity, ticketID string, voteType domain.VoteType) (domain.VoteTally, error) {
	if !voteType.Valid() {
		return domain.VoteTally{}, apperrors.NewValidationError("vote_type must be upvote or downvote", map[string]any{"vote_type": voteType})
	}

	var tally domain.VoteTally
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Tickets.GetByID(ctx, ticketID); err != nil {
			return err
		}

		if err := repos.Votes.Upsert(ctx, &domain.Vote{TicketID: ticketID, UserID: actor.UserID, Type: voteType}); err != nil {
			return err
		}

		var err error
		tally, err = repos.Votes.TallyByTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		return repos.Tickets.SetVoteCounts(ctx, ticketID, tally)
	})
	if err != nil {
		return domain.VoteTally{}, storeError(err, "ticket")
	}

	publishEvent(ctx, s.dispatcher, events.New(events.EventTicketVoted, events.ActorFor(actor), ticketID,
		events.TicketVotedPayload{VoteType: voteType, Upvotes: tally.Upvotes, Downvotes: tally.Downvotes}, nil))
	return tally, nil
}
