package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestVoteSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)
	alice := env.user(t, "alice", domain.RoleEndUser)
	bob := env.user(t, "bob", domain.RoleAgent)
	view := env.ticket(t, owner, "Subject", "desc")

	steps := []struct {
		voter domain.Identity
		vote  domain.VoteType
		want  domain.VoteTally
	}{
		{alice, domain.VoteUp, domain.VoteTally{Upvotes: 1}},
		{alice, domain.VoteUp, domain.VoteTally{Upvotes: 1}},
		{bob, domain.VoteDown, domain.VoteTally{Upvotes: 1, Downvotes: 1}},
		{alice, domain.VoteDown, domain.VoteTally{Downvotes: 2}},
		{owner, domain.VoteUp, domain.VoteTally{Upvotes: 1, Downvotes: 2}},
	}
	for i, step := range steps {
		tally, err := env.votes.Vote(ctx, step.voter, view.ID, step.vote)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if tally != step.want {
			t.Fatalf("step %d: tally %+v, want %+v", i, tally, step.want)
		}
	}

	ticket, err := env.tickets.GetTicket(ctx, owner, view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ticket.Upvotes != 1 || ticket.Downvotes != 2 {
		t.Fatalf("ticket counters %d/%d out of step", ticket.Upvotes, ticket.Downvotes)
	}
}

func TestVoteErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)
	view := env.ticket(t, owner, "Subject", "desc")

	_, err := env.votes.Vote(ctx, owner, view.ID, domain.VoteType("meh"))
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.votes.Vote(ctx, owner, "missing", domain.VoteUp)
	expectKind(t, err, "NOT_FOUND")
}
