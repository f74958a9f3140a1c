// Package channel delivers outbound messages through two independent
// sinks: a transcript reply and a synthesized voice utterance.
package channel

import (
	"context"
	"log/slog"

	"quotebot/internal/domain"
	"quotebot/internal/speech"
)

// TranscriptSink posts replies into the originating conversation.
type TranscriptSink interface {
	ReplyText(ctx context.Context, ref domain.ConversationRef, text string) error
	ReplyAudio(ctx context.Context, ref domain.ConversationRef, contentType string, audio []byte) error
}

// Channel fans one message out to the transcript and speech sinks.
// Delivery is best effort: a sink failure is logged and never blocks
// the other sink or the turn.
type Channel struct {
	transcript  TranscriptSink
	synthesizer speech.Synthesizer
}

// New creates a dual-sink output channel. synthesizer may be nil, in
// which case messages are delivered as transcript entries only.
func New(transcript TranscriptSink, synthesizer speech.Synthesizer) *Channel {
	return &Channel{
		transcript:  transcript,
		synthesizer: synthesizer,
	}
}

// Send delivers one message through both sinks, transcript first.
func (c *Channel) Send(ctx context.Context, ref domain.ConversationRef, text string) {
	if err := c.transcript.ReplyText(ctx, ref, text); err != nil {
		slog.Warn("Transcript delivery failed", "conversation_id", ref.ConversationID, "error", err)
	}

	if c.synthesizer == nil {
		return
	}

	audio, contentType, err := c.synthesizer.Synthesize(ctx, text)
	if err != nil {
		slog.Warn("Speech synthesis failed", "conversation_id", ref.ConversationID, "error", err)
		return
	}
	if err := c.transcript.ReplyAudio(ctx, ref, contentType, audio); err != nil {
		slog.Warn("Audio delivery failed", "conversation_id", ref.ConversationID, "error", err)
	}
}
