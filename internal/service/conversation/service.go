package conversation

import (
	"context"
	"log"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/vchat-labs/vchat/backend/internal/fault"
	"github.com/vchat-labs/vchat/backend/internal/model/chat"
	"github.com/vchat-labs/vchat/backend/internal/model/persona"
	"github.com/vchat-labs/vchat/backend/internal/observability"
	"github.com/vchat-labs/vchat/backend/internal/service/prompt"
	"github.com/vchat-labs/vchat/backend/internal/service/synthesis"
	"github.com/vchat-labs/vchat/backend/internal/service/transcription"
)

// Generator is the completion backend gateway.
type Generator interface {
	Complete(ctx context.Context, turns []*schema.Message) (string, error)
}

// Transcriber resolves captured audio to text, degrading internally.
type Transcriber interface {
	Transcribe(ctx context.Context, sessionID string, audio []byte) transcription.Result
}

// Synthesizer renders assistant text to audio, degrading internally.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) synthesis.Result
}

// Service orchestrates one conversation turn across the three supported
// modes, sequencing persona resolution, transcription, prompt compilation,
// generation and synthesis.
type Service struct {
	personas    persona.Store
	generator   Generator
	transcriber Transcriber
	synthesizer Synthesizer
	metrics     *observability.Metrics
}

// NewService wires the controller. Metrics may be nil.
func NewService(personas persona.Store, generator Generator, transcriber Transcriber, synthesizer Synthesizer, metrics *observability.Metrics) *Service {
	return &Service{
		personas:    personas,
		generator:   generator,
		transcriber: transcriber,
		synthesizer: synthesizer,
		metrics:     metrics,
	}
}

// Converse runs one turn. Persona resolution and generation errors surface
// with their classification; transcription and synthesis degrade gracefully
// and never abort the turn.
func (s *Service) Converse(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error) {
	if !req.Mode.Valid() {
		return nil, fault.New(fault.KindValidation, "mode must be text-to-text, text-to-speech or speech-to-speech")
	}
	if !req.Mode.VoiceInput() && req.Message == "" {
		return nil, fault.New(fault.KindValidation, "message is required")
	}

	active, err := s.resolvePersona(req.PersonaName)
	if err != nil {
		s.metrics.ObserveTurn(string(req.Mode), "persona_error")
		return nil, err
	}

	resp := &chat.TurnResponse{
		TurnID:      uuid.NewString(),
		PersonaName: active.Name,
	}

	message := req.Message
	if req.Mode.VoiceInput() {
		result := s.transcriber.Transcribe(ctx, req.SessionID, req.Audio)
		if result.Simulated {
			s.metrics.ObserveSimulated("transcription")
		}
		message = result.Text
		resp.Transcription = result.Text
		resp.TranscriptionSimulated = result.Simulated
	}

	turns := prompt.Compile(active, message)

	start := time.Now()
	reply, err := s.generator.Complete(ctx, turns)
	s.metrics.ObserveGenerationLatency(time.Since(start))
	if err != nil {
		kind := fault.KindOf(err)
		s.metrics.ObserveBackendError("generation", string(kind))
		s.metrics.ObserveTurn(string(req.Mode), "generation_error")
		return nil, err
	}
	resp.ReplyText = reply

	if req.Mode.VoiceOutput() {
		result := s.synthesizer.Synthesize(ctx, reply, synthesis.NormalizeVoiceAlias(active.VoiceID))
		if result.Simulated {
			s.metrics.ObserveSimulated("synthesis")
		}
		resp.AudioDataURI = result.AudioDataURI
		resp.AudioNotice = result.Notice
		resp.AudioSimulated = result.Simulated
	}

	s.metrics.ObserveTurn(string(req.Mode), "ok")
	log.Printf("[conversation] turn=%s persona=%s mode=%s reply_len=%d", resp.TurnID, active.Name, req.Mode, len(reply))
	return resp, nil
}

// resolvePersona applies the requested persona to the shared selection, or
// falls back to the current one, then to the first of the catalog. Selecting
// mutates process-wide state, so concurrent callers observe each other's
// choice (last writer wins).
func (s *Service) resolvePersona(name string) (persona.Persona, error) {
	if name != "" {
		if err := s.personas.Select(name); err != nil {
			return persona.Persona{}, err
		}
	}

	if active, ok := s.personas.Current(); ok {
		return active, nil
	}

	names := s.personas.List()
	if len(names) == 0 {
		return persona.Persona{}, fault.New(fault.KindNotFound, "persona catalog is empty")
	}
	if err := s.personas.Select(names[0]); err != nil {
		return persona.Persona{}, err
	}
	active, _ := s.personas.Current()
	return active, nil
}
