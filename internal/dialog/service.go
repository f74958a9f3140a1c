package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quotebot/internal/domain"
	"quotebot/internal/store"
)

// OutputChannel delivers one outbound message, best effort.
type OutputChannel interface {
	Send(ctx context.Context, ref domain.ConversationRef, text string)
}

// Service orchestrates one turn: serialize per conversation, load the
// session, run the machine, deliver the output, persist the session.
type Service struct {
	repo    store.Repository
	machine *Machine
	out     OutputChannel
	locks   *lockTable
}

// NewService creates a turn service.
func NewService(repo store.Repository, machine *Machine, out OutputChannel) *Service {
	return &Service{
		repo:    repo,
		machine: machine,
		out:     out,
		locks:   newLockTable(),
	}
}

// HandleMessage processes one inbound message end to end. Turns for the
// same conversation run strictly one at a time so concurrent messages
// cannot race on load-mutate-save.
func (s *Service) HandleMessage(ctx context.Context, ref domain.ConversationRef, text string) error {
	unlock := s.locks.lock(ref.ConversationID)
	defer unlock()

	session, err := s.repo.GetSession(ctx, ref.ConversationID)
	switch {
	case errors.Is(err, store.ErrCorruptStep):
		slog.Warn("Resetting session with corrupt step",
			"conversation_id", ref.ConversationID, "error", err)
		session = domain.NewSession(ref.ConversationID)
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	case session == nil:
		session = domain.NewSession(ref.ConversationID)
	}

	message := s.machine.Next(ctx, session, text)

	// Delivery happens before persistence; the session only records
	// the transition once the user has been answered.
	s.out.Send(ctx, ref, message)

	// The reply is already out. Failing the request here would make the
	// platform redeliver the activity and double-speak the turn, so a
	// persistence failure is logged and the turn still acknowledges.
	if err := s.repo.SaveSession(ctx, session); err != nil {
		slog.Error("Session persistence failed",
			"conversation_id", ref.ConversationID, "error", err)
	}
	return nil
}
