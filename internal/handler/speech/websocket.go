package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vchat-labs/vchat/backend/internal/model/chat"
)

// Converser runs one conversation turn for the realtime channel.
type Converser interface {
	Converse(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error)
}

// WebSocketHandler serves the realtime voice channel. Each final audio frame
// becomes one speech-to-speech turn; text frames become text-to-speech turns.
type WebSocketHandler struct {
	conversations Converser
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(conversations Converser) *WebSocketHandler {
	return &WebSocketHandler{
		conversations: conversations,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the websocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// AudioMessage is a captured audio chunk from the client.
type AudioMessage struct {
	AudioData  []byte `json:"audioData"`
	IsFinal    bool   `json:"isFinal"`
	ChunkIndex int    `json:"chunkIndex"`
}

// TextMessage is a typed user message on the voice channel.
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage adjusts per-connection settings.
type ConfigMessage struct {
	Persona string `json:"persona"`
	Mode    string `json:"mode"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connectionState struct {
	sessionID string
	persona   string
	mode      chat.Mode
	buffer    bytes.Buffer
}

func newConnectionState(sessionID string) *connectionState {
	return &connectionState{
		sessionID: sessionID,
		mode:      chat.ModeSpeechToSpeech,
	}
}

// handleWebSocket upgrades the connection and pumps messages until the client
// goes away.
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	state := newConnectionState(sessionID)

	h.sendInfo(conn, sessionID, map[string]any{
		"type": "connected",
		"mode": string(state.mode),
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			if msg.SessionID != "" && msg.SessionID != sessionID {
				h.sendError(conn, "session mismatch")
				continue
			}

			h.handleMessage(ctx, conn, state, &msg)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "audio":
		h.handleAudioMessage(ctx, conn, state, msg.Data)
	case "text":
		h.handleTextMessage(ctx, conn, state, msg.Data)
	case "config":
		h.handleConfigMessage(conn, state, msg.Data)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleAudioMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var audio AudioMessage
	if err := json.Unmarshal(raw, &audio); err != nil {
		h.sendError(conn, "invalid audio payload")
		return
	}

	if len(audio.AudioData) > 0 {
		written, _ := state.buffer.Write(audio.AudioData)
		log.Printf("[websocket] buffered audio chunk session=%s size=%d total=%d", state.sessionID, written, state.buffer.Len())
	}

	if audio.IsFinal {
		h.runBufferedTurn(ctx, conn, state)
	}
}

func (h *WebSocketHandler) runBufferedTurn(ctx context.Context, conn *websocket.Conn, state *connectionState) {
	audioBytes := make([]byte, state.buffer.Len())
	copy(audioBytes, state.buffer.Bytes())
	state.buffer.Reset()

	resp, err := h.conversations.Converse(ctx, chat.TurnRequest{
		Audio:       audioBytes,
		Mode:        chat.ModeSpeechToSpeech,
		PersonaName: state.persona,
		SessionID:   state.sessionID,
	})
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.sendInfo(conn, state.sessionID, map[string]any{
		"type":         "transcription",
		"text":         resp.Transcription,
		"isSimulation": resp.TranscriptionSimulated,
		"isFinal":      true,
	})

	h.sendTurnResult(conn, state, resp)
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, "invalid text payload")
		return
	}
	if text.Text == "" {
		return
	}

	mode := state.mode
	if mode == chat.ModeSpeechToSpeech {
		mode = chat.ModeTextToSpeech
	}

	resp, err := h.conversations.Converse(ctx, chat.TurnRequest{
		Message:     text.Text,
		Mode:        mode,
		PersonaName: state.persona,
		SessionID:   state.sessionID,
	})
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.sendTurnResult(conn, state, resp)
}

func (h *WebSocketHandler) sendTurnResult(conn *websocket.Conn, state *connectionState, resp *chat.TurnResponse) {
	h.sendInfo(conn, state.sessionID, map[string]any{
		"type":    "reply",
		"persona": resp.PersonaName,
		"text":    resp.ReplyText,
		"isFinal": true,
	})

	if resp.AudioDataURI != "" {
		h.sendInfo(conn, state.sessionID, map[string]any{
			"type":     "audio",
			"audioUrl": resp.AudioDataURI,
			"isFinal":  true,
		})
		return
	}
	if resp.AudioNotice != "" {
		h.sendInfo(conn, state.sessionID, map[string]any{
			"type":         "audio",
			"message":      resp.AudioNotice,
			"isSimulation": true,
		})
	}
}

func (h *WebSocketHandler) handleConfigMessage(conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, "invalid config payload")
		return
	}

	if cfg.Persona != "" {
		state.persona = cfg.Persona
	}
	if mode := chat.Mode(cfg.Mode); mode.Valid() {
		state.mode = mode
	}

	log.Printf("[websocket] config applied session=%s persona=%s mode=%s", state.sessionID, state.persona, state.mode)

	h.sendInfo(conn, state.sessionID, map[string]any{
		"type":    "config",
		"persona": state.persona,
		"mode":    string(state.mode),
	})
}

func (h *WebSocketHandler) sendInfo(conn *websocket.Conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop keeps the connection alive under the read deadline.
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
