package generation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/vchat-labs/vchat/backend/internal/config"
	"github.com/vchat-labs/vchat/backend/internal/fault"
)

// FallbackReply substitutes a well-formed but empty completion so a degraded
// backend never stalls the conversation.
const FallbackReply = "Sorry, the words just aren't coming out right now..."

// Service sends compiled turn sequences to the completion backend. One
// attempt per call, no retries; callers surface the classified error.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
}

// NewService builds the gateway. Without a credential the backend client is
// never constructed and every Complete call reports a config fault before
// touching the network.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	s := &Service{cfg: cfg}
	if !cfg.Enabled() {
		return s, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	s.chatModel = chatModel
	return s, nil
}

// NewWithModel injects a prebuilt chat model. Used by tests and by callers
// that manage the backend client themselves.
func NewWithModel(chatModel model.ChatModel, cfg config.AIConfig) *Service {
	return &Service{chatModel: chatModel, cfg: cfg}
}

// Enabled reports whether a backend client is available.
func (s *Service) Enabled() bool {
	return s != nil && s.chatModel != nil
}

// Complete runs the turn sequence through the backend and returns the first
// candidate's trimmed text.
func (s *Service) Complete(ctx context.Context, turns []*schema.Message) (string, error) {
	if !s.Enabled() {
		return "", fault.New(fault.KindConfig, "completion backend credential not configured")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	response, err := s.chatModel.Generate(ctx, turns)
	if err != nil {
		return "", fault.ClassifyBackend(err)
	}

	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Printf("[generation] backend returned empty candidate, substituting fallback reply")
		return FallbackReply, nil
	}

	return strings.TrimSpace(response.Content), nil
}
