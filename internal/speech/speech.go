// Package speech provides text-to-speech synthesis for outbound messages.
package speech

import "context"

// Synthesizer converts a message into audio. Implementations are
// stateless per call; one synthesis request is issued per message.
type Synthesizer interface {
	// Synthesize renders text as audio and returns the encoded bytes
	// along with their MIME content type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)

	// Close releases the underlying client.
	Close() error
}
