package calls

import (
	"context"
	"fmt"
)

// Player speaks text into a live call resolved by its connection ID.
type Player interface {
	PlayText(ctx context.Context, callConnectionID, text string) error
}

// Greeter plays a fixed greeting into newly connected calls. It reads
// and writes no session state.
type Greeter struct {
	player   Player
	greeting string
}

// NewGreeter creates a greeter. player may be nil when call automation
// is not configured; greeting playback then fails with an error.
func NewGreeter(player Player, greeting string) *Greeter {
	return &Greeter{player: player, greeting: greeting}
}

// Greet plays the greeting into the call identified by
// callConnectionID. Failures are returned so the caller can report
// them; the HTTP boundary still acknowledges the event.
func (g *Greeter) Greet(ctx context.Context, callConnectionID string) error {
	if g.player == nil {
		return fmt.Errorf("call automation is not configured")
	}
	if err := g.player.PlayText(ctx, callConnectionID, g.greeting); err != nil {
		return fmt.Errorf("play greeting on call %s: %w", callConnectionID, err)
	}
	return nil
}
