package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmuslimabdulj/calcvault/internal/assistant"
	"github.com/mmuslimabdulj/calcvault/internal/domain"
	"github.com/mmuslimabdulj/calcvault/internal/metrics"
)

// BridgeConfig tunes the assistant exchange
type BridgeConfig struct {
	AssistantID string
	Model       string
	Directive   string
	Timeout     time.Duration
}

// DefaultBridgeConfig returns the built-in assistant persona settings
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		AssistantID: domain.AssistantID,
		Model:       domain.AssistantModel,
		Directive:   domain.AssistantDirective,
		Timeout:     domain.AssistantTimeout,
	}
}

// Bridge answers messages addressed to the assistant account. The sender's
// message is always recorded first; the reply (or one fallback) follows
// asynchronously.
type Bridge struct {
	store     *Store
	generator assistant.Generator
	cfg       BridgeConfig
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewBridge wires a generator to the store. A nil generator behaves as
// assistant.Unavailable.
func NewBridge(store *Store, generator assistant.Generator, cfg BridgeConfig, logger *slog.Logger) *Bridge {
	if generator == nil {
		generator = assistant.Unavailable{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultBridgeConfig()
	if cfg.AssistantID == "" {
		cfg.AssistantID = def.AssistantID
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Directive == "" {
		cfg.Directive = def.Directive
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Bridge{store: store, generator: generator, cfg: cfg, logger: logger}
}

// Send records the message from the current user and, when it is addressed
// to the assistant, starts the reply in the background.
func (b *Bridge) Send(ctx context.Context, text, receiverID string) (domain.Message, error) {
	sent, err := b.store.SendMessage(ctx, text, receiverID)
	if err != nil {
		return domain.Message{}, err
	}
	if receiverID != b.cfg.AssistantID {
		return sent, nil
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.Timeout)
		defer cancel()
		b.Reply(replyCtx, sent)
	}()
	return sent, nil
}

// Wait blocks until every in-flight reply has been recorded
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// Reply performs one exchange for sent and records exactly one message from
// the assistant: the generated text, or the fallback notice on any failure.
func (b *Bridge) Reply(ctx context.Context, sent domain.Message) domain.Message {
	history := Conversation(b.historyUpTo(sent.ID), sent.SenderID, b.cfg.AssistantID)
	req := assistant.Request{
		Model:      b.cfg.Model,
		Transcript: Transcript(history, b.cfg.AssistantID),
		Directive:  b.cfg.Directive,
	}

	reply := domain.NewMessage(b.cfg.AssistantID, sent.SenderID, "", b.store.now())
	text, err := b.generate(ctx, req)
	if err != nil {
		b.logger.Warn("assistant exchange failed",
			"message_id", sent.ID,
			"error", fmt.Errorf("%w: %v", domain.ErrAssistantUnavailable, err),
		)
		metrics.AssistantReplies.WithLabelValues("fallback").Inc()
		reply.ID = "err-" + uuid.NewString()
		reply.Text = domain.AssistantFallback
	} else {
		metrics.AssistantReplies.WithLabelValues("ok").Inc()
		if strings.TrimSpace(text) == "" {
			text = domain.AssistantPlaceholder
		}
		reply.Text = text
	}

	// the reply must land even if ctx already expired
	if err := b.store.postAs(context.WithoutCancel(ctx), reply); err != nil {
		b.logger.Error("assistant reply not recorded", "message_id", sent.ID, "error", err)
	}
	return reply
}

// generate runs the generator, converting panics and ctx expiry into errors
func (b *Bridge) generate(ctx context.Context, req assistant.Request) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := b.generator.Generate(ctx, req)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// historyUpTo returns the log up to and including messageID, so replies to
// earlier sends never see later messages
func (b *Bridge) historyUpTo(messageID string) []domain.Message {
	messages := b.store.Messages()
	for i, m := range messages {
		if m.ID == messageID {
			return messages[:i+1]
		}
	}
	return messages
}

// Transcript tags each message as the assistant's own turn or the
// counterpart's, preserving order
func Transcript(history []domain.Message, assistantID string) []assistant.Turn {
	turns := make([]assistant.Turn, 0, len(history))
	for _, m := range history {
		role := assistant.RoleOther
		if m.SenderID == assistantID {
			role = assistant.RoleSelf
		}
		turns = append(turns, assistant.Turn{Role: role, Text: m.Text})
	}
	return turns
}
