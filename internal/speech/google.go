package speech

import (
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// GoogleSynthesizer implements Synthesizer using Google Cloud
// Text-to-Speech.
type GoogleSynthesizer struct {
	client   *texttospeech.Client
	language string
	timeout  time.Duration
}

// NewGoogleSynthesizer creates a synthesizer authenticated with an API
// key. language is a BCP-47 code such as "en-US".
func NewGoogleSynthesizer(ctx context.Context, apiKey, language string, timeout time.Duration) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{
		client:   client,
		language: language,
		timeout:  timeout,
	}, nil
}

// Synthesize renders text as MP3 audio.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, "audio/mpeg", nil
}

// Close releases the underlying client.
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}
