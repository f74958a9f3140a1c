package channel

import (
	"context"
	"errors"
	"testing"

	"quotebot/internal/domain"
)

type fakeTranscript struct {
	texts    []string
	audio    [][]byte
	textErr  error
	audioErr error
}

func (f *fakeTranscript) ReplyText(_ context.Context, _ domain.ConversationRef, text string) error {
	f.texts = append(f.texts, text)
	return f.textErr
}

func (f *fakeTranscript) ReplyAudio(_ context.Context, _ domain.ConversationRef, _ string, audio []byte) error {
	f.audio = append(f.audio, audio)
	return f.audioErr
}

type fakeSynthesizer struct {
	calls int
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte(text), "audio/mpeg", nil
}

func (f *fakeSynthesizer) Close() error { return nil }

func TestSendDeliversBothSinks(t *testing.T) {
	transcript := &fakeTranscript{}
	synth := &fakeSynthesizer{}
	c := New(transcript, synth)

	c.Send(context.Background(), domain.ConversationRef{ConversationID: "conv-1"}, "hello")

	if len(transcript.texts) != 1 || transcript.texts[0] != "hello" {
		t.Errorf("Expected one transcript entry, got %v", transcript.texts)
	}
	if synth.calls != 1 {
		t.Errorf("Expected one synthesis per message, got %d", synth.calls)
	}
	if len(transcript.audio) != 1 || string(transcript.audio[0]) != "hello" {
		t.Errorf("Expected synthesized audio delivered, got %v", transcript.audio)
	}
}

func TestSendSpeechFailureDoesNotBlockTranscript(t *testing.T) {
	transcript := &fakeTranscript{}
	synth := &fakeSynthesizer{err: errors.New("synthesis quota exceeded")}
	c := New(transcript, synth)

	c.Send(context.Background(), domain.ConversationRef{ConversationID: "conv-1"}, "hello")

	if len(transcript.texts) != 1 {
		t.Errorf("Expected transcript delivered despite speech failure, got %v", transcript.texts)
	}
	if len(transcript.audio) != 0 {
		t.Errorf("Expected no audio on synthesis failure, got %v", transcript.audio)
	}
}

func TestSendTranscriptFailureDoesNotBlockSpeech(t *testing.T) {
	transcript := &fakeTranscript{textErr: errors.New("service url unreachable")}
	synth := &fakeSynthesizer{}
	c := New(transcript, synth)

	c.Send(context.Background(), domain.ConversationRef{ConversationID: "conv-1"}, "hello")

	if synth.calls != 1 {
		t.Errorf("Expected synthesis attempted despite transcript failure, got %d", synth.calls)
	}
}

func TestSendWithoutSynthesizer(t *testing.T) {
	transcript := &fakeTranscript{}
	c := New(transcript, nil)

	c.Send(context.Background(), domain.ConversationRef{ConversationID: "conv-1"}, "hello")

	if len(transcript.texts) != 1 {
		t.Errorf("Expected transcript-only delivery, got %v", transcript.texts)
	}
}
