package chat

// Mode selects which legs of the voice pipeline a turn traverses.
type Mode string

const (
	ModeTextToText     Mode = "text-to-text"
	ModeTextToSpeech   Mode = "text-to-speech"
	ModeSpeechToSpeech Mode = "speech-to-speech"
)

// Valid reports whether the mode is one of the three supported values.
func (m Mode) Valid() bool {
	switch m {
	case ModeTextToText, ModeTextToSpeech, ModeSpeechToSpeech:
		return true
	}
	return false
}

// VoiceInput reports whether the turn's user input arrives as audio.
func (m Mode) VoiceInput() bool { return m == ModeSpeechToSpeech }

// VoiceOutput reports whether the reply should also be synthesized.
func (m Mode) VoiceOutput() bool { return m == ModeTextToSpeech || m == ModeSpeechToSpeech }

// TurnRequest is one converse invocation. Request-scoped; discarded after the
// response is delivered.
type TurnRequest struct {
	Message     string `json:"message,omitempty"`
	Audio       []byte `json:"audioData,omitempty"`
	Mode        Mode   `json:"mode"`
	PersonaName string `json:"persona"`
	SessionID   string `json:"sessionId,omitempty"`
}

// TurnResponse carries the assistant reply plus the optional voice legs.
// Callers detect the degraded synthesis path by the absence of AudioDataURI,
// not by a boolean flag.
type TurnResponse struct {
	TurnID                 string `json:"turnId"`
	PersonaName            string `json:"persona"`
	ReplyText              string `json:"response"`
	Transcription          string `json:"transcription,omitempty"`
	TranscriptionSimulated bool   `json:"transcriptionSimulated,omitempty"`
	AudioDataURI           string `json:"audio_url,omitempty"`
	AudioNotice            string `json:"audio_notice,omitempty"`
	AudioSimulated         bool   `json:"audioSimulated,omitempty"`
}
