// Package chat relays questions to a generative language model on behalf
// of the in-app assistant.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const (
	FallbackEmpty = "Desculpe, não consegui processar sua pergunta. Tente reformular!"
	FallbackError = "Ops! Tive um problema ao processar sua mensagem. Por favor, tente novamente! 🐂"

	RoleUser  = "user"
	RoleModel = "model"

	maxHistory    = 6
	maxMessageLen = 4000
)

const systemContext = `Você é o Bull, assistente financeiro de pequenas empresas brasileiras.
Responda em português, de forma curta e prática. Explique conceitos como DRE,
fluxo de caixa, contas a pagar e a receber quando perguntarem. Não invente
números da empresa do usuário; se faltar informação, diga o que ele deve
consultar no painel.`

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message too long")
	ErrNotConfigured  = errors.New("chat is not configured")
)

type Part struct {
	Text string `json:"text"`
}

type HistoryEntry struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Request struct {
	Message             string         `json:"message"`
	ConversationHistory []HistoryEntry `json:"conversationHistory"`
}

type Response struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Turn is one message of the conversation sent to the model.
type Turn struct {
	Role string
	Text string
}

// Generator produces the model reply for an ordered conversation.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

type Relay struct {
	gen Generator
}

// NewRelay accepts a nil generator; every reply is then the error fallback.
func NewRelay(gen Generator) *Relay {
	return &Relay{gen: gen}
}

// Reply never fails: problems become the user-facing fallback with the
// cause in Error.
func (r *Relay) Reply(ctx context.Context, req Request) Response {
	turns, err := r.buildTurns(req)
	if err == nil && r.gen == nil {
		err = ErrNotConfigured
	}
	if err != nil {
		slog.WarnContext(ctx, "Chat request rejected", "error", err)
		return Response{Response: FallbackError, Error: err.Error()}
	}

	text, err := r.gen.Generate(ctx, turns)
	if err != nil {
		slog.ErrorContext(ctx, "Chat generation failed", "error", err)
		return Response{Response: FallbackError, Error: err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return Response{Response: FallbackEmpty}
	}
	return Response{Response: text}
}

// buildTurns orders the conversation as system context, the most recent
// history and then the new message.
func (r *Relay) buildTurns(req Request) ([]Turn, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(msg) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	history := req.ConversationHistory
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	turns := make([]Turn, 0, len(history)+2)
	turns = append(turns, Turn{Role: RoleUser, Text: systemContext})
	for _, h := range history {
		var sb strings.Builder
		for _, p := range h.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() == 0 {
			continue
		}
		role := RoleUser
		if h.Role == RoleModel || h.Role == "assistant" {
			role = RoleModel
		}
		turns = append(turns, Turn{Role: role, Text: sb.String()})
	}
	turns = append(turns, Turn{Role: RoleUser, Text: msg})
	return turns, nil
}
