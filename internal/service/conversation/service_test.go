package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/vchat-labs/vchat/backend/internal/fault"
	"github.com/vchat-labs/vchat/backend/internal/model/chat"
	"github.com/vchat-labs/vchat/backend/internal/model/persona"
	"github.com/vchat-labs/vchat/backend/internal/service/synthesis"
	"github.com/vchat-labs/vchat/backend/internal/service/transcription"
)

type fakeGenerator struct {
	reply string
	err   error
	turns []*schema.Message
	calls int
}

func (f *fakeGenerator) Complete(ctx context.Context, turns []*schema.Message) (string, error) {
	f.calls++
	f.turns = turns
	return f.reply, f.err
}

type fakeTranscriber struct {
	result transcription.Result
	calls  int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, sessionID string, audio []byte) transcription.Result {
	f.calls++
	f.result.SessionID = sessionID
	return f.result
}

type fakeSynthesizer struct {
	result synthesis.Result
	voice  string
	calls  int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voice string) synthesis.Result {
	f.calls++
	f.voice = voice
	return f.result
}

func newTestService(gen *fakeGenerator, tr *fakeTranscriber, syn *fakeSynthesizer) (*Service, persona.Store) {
	store := persona.NewMemoryStore(persona.Seed())
	return NewService(store, gen, tr, syn, nil), store
}

func TestTextToTextTurnWithCreatedPersona(t *testing.T) {
	gen := &fakeGenerator{reply: "hey, welcome in!"}
	syn := &fakeSynthesizer{}
	svc, store := newTestService(gen, &fakeTranscriber{}, syn)

	if _, err := store.Create("Nova", "https://example.com/nova", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message:     "hi",
		Mode:        chat.ModeTextToText,
		PersonaName: "Nova",
	})
	if err != nil {
		t.Fatalf("converse: %v", err)
	}
	if resp.ReplyText == "" {
		t.Fatal("reply text should not be empty")
	}
	if resp.AudioDataURI != "" || resp.AudioNotice != "" {
		t.Fatalf("text-to-text turn must not carry audio, got %+v", resp)
	}
	if resp.PersonaName != "Nova" {
		t.Fatalf("persona = %q", resp.PersonaName)
	}
	if syn.calls != 0 {
		t.Fatal("synthesizer must not be called in text-to-text mode")
	}
	if resp.TurnID == "" {
		t.Fatal("turn id should be assigned")
	}

	// The final turn carries the user message verbatim.
	last := gen.turns[len(gen.turns)-1]
	if last.Role != schema.User || last.Content != "hi" {
		t.Fatalf("final turn = %+v", last)
	}
}

func TestTextToSpeechSurvivesSynthesisFailure(t *testing.T) {
	gen := &fakeGenerator{reply: "sure, here goes"}
	syn := &fakeSynthesizer{result: synthesis.Result{
		Notice:    `speech synthesis for "sure, here goes" completed (simulated)`,
		Simulated: true,
	}}
	svc, _ := newTestService(gen, &fakeTranscriber{}, syn)

	resp, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message: "tell me a story",
		Mode:    chat.ModeTextToSpeech,
	})
	if err != nil {
		t.Fatalf("synthesis failure must not abort the turn: %v", err)
	}
	if resp.ReplyText == "" {
		t.Fatal("reply text should survive the degraded synthesis")
	}
	if !resp.AudioSimulated || resp.AudioNotice == "" {
		t.Fatalf("degraded synthesis should be tagged, got %+v", resp)
	}
}

func TestSpeechToSpeechRunsBothLegs(t *testing.T) {
	gen := &fakeGenerator{reply: "nice to hear you"}
	tr := &fakeTranscriber{result: transcription.Result{Text: "what are you up to?"}}
	syn := &fakeSynthesizer{result: synthesis.Result{AudioDataURI: "data:audio/mp3;base64,AAAA"}}
	svc, _ := newTestService(gen, tr, syn)

	resp, err := svc.Converse(context.Background(), chat.TurnRequest{
		Audio:     []byte("wav-bytes"),
		Mode:      chat.ModeSpeechToSpeech,
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("converse: %v", err)
	}
	if tr.calls != 1 {
		t.Fatalf("transcriber calls = %d", tr.calls)
	}
	if resp.Transcription != "what are you up to?" {
		t.Fatalf("transcription = %q", resp.Transcription)
	}
	if resp.AudioDataURI == "" {
		t.Fatal("speech-to-speech turn should carry audio")
	}

	// The transcribed text, not the empty request message, feeds the prompt.
	last := gen.turns[len(gen.turns)-1]
	if last.Content != "what are you up to?" {
		t.Fatalf("final turn content = %q", last.Content)
	}
}

func TestUnknownPersonaLeavesSelectionAlone(t *testing.T) {
	gen := &fakeGenerator{reply: "hello"}
	svc, store := newTestService(gen, &fakeTranscriber{}, &fakeSynthesizer{})

	if err := store.Select("Dani"); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message:     "hi",
		Mode:        chat.ModeTextToText,
		PersonaName: "nobody",
	})
	if fault.KindOf(err) != fault.KindNotFound {
		t.Fatalf("err = %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generation must not run when the persona is unknown")
	}

	active, ok := store.Current()
	if !ok || active.Name != "Dani" {
		t.Fatalf("failed resolution must not disturb the selection, current = %+v", active)
	}
}

func TestDefaultsToFirstPersonaWhenNoneSelected(t *testing.T) {
	gen := &fakeGenerator{reply: "hello"}
	svc, store := newTestService(gen, &fakeTranscriber{}, &fakeSynthesizer{})

	resp, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message: "hi",
		Mode:    chat.ModeTextToText,
	})
	if err != nil {
		t.Fatalf("converse: %v", err)
	}

	first := store.List()[0]
	if resp.PersonaName != first {
		t.Fatalf("persona = %q, want first of catalog %q", resp.PersonaName, first)
	}
	if active, ok := store.Current(); !ok || active.Name != first {
		t.Fatal("fallback should persist the selection")
	}
}

func TestGenerationErrorSurfacesWithClassification(t *testing.T) {
	gen := &fakeGenerator{err: fault.New(fault.KindQuota, "insufficient_quota")}
	svc, _ := newTestService(gen, &fakeTranscriber{}, &fakeSynthesizer{})

	_, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message: "hi",
		Mode:    chat.ModeTextToText,
	})
	if fault.KindOf(err) != fault.KindQuota {
		t.Fatalf("err = %v", err)
	}
}

func TestInvalidModeRejected(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{}, &fakeTranscriber{}, &fakeSynthesizer{})

	_, err := svc.Converse(context.Background(), chat.TurnRequest{Message: "hi", Mode: "video"})
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

func TestEmptyMessageRejectedForTextModes(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{}, &fakeTranscriber{}, &fakeSynthesizer{})

	_, err := svc.Converse(context.Background(), chat.TurnRequest{Mode: chat.ModeTextToText})
	var fe *fault.Error
	if !errors.As(err, &fe) || fe.Kind != fault.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

func TestVoiceAliasNormalizedBeforeSynthesis(t *testing.T) {
	gen := &fakeGenerator{reply: "hello"}
	syn := &fakeSynthesizer{result: synthesis.Result{AudioDataURI: "data:audio/mp3;base64,AAAA"}}
	svc, store := newTestService(gen, &fakeTranscriber{}, syn)

	// Dani's seeded voice id is an external token, not a backend voice.
	if err := store.Select("Dani"); err != nil {
		t.Fatalf("select: %v", err)
	}

	if _, err := svc.Converse(context.Background(), chat.TurnRequest{
		Message: "hi",
		Mode:    chat.ModeTextToSpeech,
	}); err != nil {
		t.Fatalf("converse: %v", err)
	}
	if syn.voice != "" {
		t.Fatalf("external voice token should normalize to empty, got %q", syn.voice)
	}
}
