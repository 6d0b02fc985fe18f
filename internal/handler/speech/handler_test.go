package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vchat-labs/vchat/backend/internal/service/recording"
	"github.com/vchat-labs/vchat/backend/internal/service/synthesis"
	"github.com/vchat-labs/vchat/backend/internal/service/transcription"
)

type fakeTranscriber struct {
	result transcription.Result
	audio  []byte
	calls  int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, sessionID string, audio []byte) transcription.Result {
	f.calls++
	f.audio = audio
	f.result.SessionID = sessionID
	return f.result
}

type fakeSynthesizer struct {
	result synthesis.Result
	text   string
	voice  string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voice string) synthesis.Result {
	f.text = text
	f.voice = voice
	return f.result
}

func newTestRouter(tr Transcriber, syn Synthesizer) (http.Handler, *recording.Tracker) {
	tracker := recording.NewTracker()
	r := chi.NewRouter()
	New(tracker, tr, syn).RegisterRoutes(r, nil)
	return r, tracker
}

func postJSON(t *testing.T, router http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return rec, decoded
}

func TestRecordStartSetsFlag(t *testing.T) {
	router, tracker := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec, body := postJSON(t, router, "/speech/record", `{"action":"start","sessionId":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["isRecording"] != true {
		t.Fatalf("body = %v", body)
	}
	if !tracker.Status("s1") {
		t.Fatal("tracker should mark the session recording")
	}
}

func TestRecordStopWithoutAudioYieldsSimulatedTranscription(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "placeholder phrase", Simulated: true}}
	router, tracker := newTestRouter(tr, &fakeSynthesizer{})
	tracker.Start("s1")

	rec, body := postJSON(t, router, "/speech/record", `{"action":"stop","sessionId":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["transcription"] != "placeholder phrase" || body["isSimulation"] != true {
		t.Fatalf("body = %v", body)
	}
	if body["wasRecording"] != true {
		t.Fatalf("wasRecording = %v", body["wasRecording"])
	}
	if tracker.Status("s1") {
		t.Fatal("stop should clear the flag")
	}
}

func TestRecordStopForwardsAudio(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "hello"}}
	router, _ := newTestRouter(tr, &fakeSynthesizer{})

	// "d2F2LWJ5dGVz" is base64 for "wav-bytes".
	_, body := postJSON(t, router, "/speech/record", `{"action":"stop","sessionId":"s1","audioData":"d2F2LWJ5dGVz"}`)
	if string(tr.audio) != "wav-bytes" {
		t.Fatalf("audio = %q", tr.audio)
	}
	if body["wasRecording"] != false {
		t.Fatal("stop without start should report wasRecording=false")
	}
}

func TestRecordStatusDoesNotCreateState(t *testing.T) {
	router, tracker := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec, body := postJSON(t, router, "/speech/record", `{"action":"status","sessionId":"fresh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["isRecording"] != false {
		t.Fatalf("body = %v", body)
	}
	if tracker.Status("fresh") {
		t.Fatal("status query must not create state")
	}
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	router, _ := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec, _ := postJSON(t, router, "/speech/record", `{"action":"pause","sessionId":"s1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecordRequiresSessionID(t *testing.T) {
	router, _ := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec, _ := postJSON(t, router, "/speech/record", `{"action":"start"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSynthesizeReturnsAudioURL(t *testing.T) {
	syn := &fakeSynthesizer{result: synthesis.Result{AudioDataURI: "data:audio/mp3;base64,AAAA"}}
	router, _ := newTestRouter(&fakeTranscriber{}, syn)

	rec, body := postJSON(t, router, "/speech/tts", `{"text":"hello there"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["audio_url"] != "data:audio/mp3;base64,AAAA" {
		t.Fatalf("body = %v", body)
	}
	if syn.text != "hello there" {
		t.Fatalf("text = %q", syn.text)
	}
}

func TestSynthesizeDegradedStillSucceeds(t *testing.T) {
	syn := &fakeSynthesizer{result: synthesis.Result{
		Notice:    `speech synthesis for "hello" completed (simulated)`,
		Simulated: true,
	}}
	router, _ := newTestRouter(&fakeTranscriber{}, syn)

	rec, body := postJSON(t, router, "/speech/tts", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded synthesis must not change the status, got %d", rec.Code)
	}
	if body["isSimulation"] != true || body["message"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestSynthesizeRequiresText(t *testing.T) {
	router, _ := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec, _ := postJSON(t, router, "/speech/tts", `{"text":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWebSocketRouteUnavailableWithoutConversations(t *testing.T) {
	router, _ := newTestRouter(&fakeTranscriber{}, &fakeSynthesizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/speech/ws/s1", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSynthesizeNormalizesVoice(t *testing.T) {
	syn := &fakeSynthesizer{result: synthesis.Result{AudioDataURI: "data:audio/mp3;base64,AAAA"}}
	router, _ := newTestRouter(&fakeTranscriber{}, syn)

	postJSON(t, router, "/speech/tts", `{"text":"hi","voice":"HAIQu18Se8Zljrot4frx"}`)
	if syn.voice != "" {
		t.Fatalf("external voice token should normalize to empty, got %q", syn.voice)
	}
}
