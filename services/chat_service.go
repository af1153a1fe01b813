package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/retana1885/Canave.ia/config"
	"github.com/retana1885/Canave.ia/internal/session"
	"github.com/retana1885/Canave.ia/tools"
)

// NotConfiguredReply is the fixed assistant answer while OPENAI_API_KEY is
// missing. The LLM endpoint is never contacted in that state.
const NotConfiguredReply = "Falta configurar OPENAI_API_KEY. En cuanto lo configures, habilito las respuestas IA."

// SystemPrompt seeds every new conversation.
const SystemPrompt = "Eres un asistente interno para consultas operativas. " +
	"No inventes cifras. Si necesitas datos, usa tools. " +
	"Si el usuario pide algo fuera de las tools, explica qué dato falta."

// ChatService drives one chat turn: a completion with the tool manifest, the
// whitelisted tool dispatches the model asked for, and a second, tool-free
// completion to word the final answer.
type ChatService struct {
	client     openai.Client
	model      string
	configured bool
	registry   *tools.Registry
	logger     *zap.SugaredLogger
}

func NewChatService(cfg config.OpenAIConfig, registry *tools.Registry, logger *zap.SugaredLogger) *ChatService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ChatService{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		configured: cfg.Configured(),
		registry:   registry,
		logger:     logger,
	}
}

// Reply runs one turn over the conversation history, which must already end
// with the new user message. It returns the messages produced by the turn in
// append order: the tool-requesting assistant message and tool results when
// tools were used, then the final assistant reply.
func (s *ChatService) Reply(ctx context.Context, history []session.Message) ([]session.Message, error) {
	if !s.configured {
		return []session.Message{{Role: session.RoleAssistant, Content: NotConfiguredReply}}, nil
	}

	msgs := toMessageParams(history)

	first, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:      openai.ChatModel(s.model),
		Messages:   msgs,
		Tools:      s.toolParams(),
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(first.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	reply := first.Choices[0].Message
	if len(reply.ToolCalls) == 0 {
		return []session.Message{{Role: session.RoleAssistant, Content: reply.Content}}, nil
	}

	appended := []session.Message{storedAssistantMessage(reply)}
	second := append(msgs, reply.ToParam())

	for _, tc := range reply.ToolCalls {
		name := tc.Function.Name
		payload := s.registry.Dispatch(ctx, name, json.RawMessage(tc.Function.Arguments))
		s.logger.Infow("tool dispatched", "tool", name, "call_id", tc.ID)

		appended = append(appended, session.Message{
			Role:       session.RoleTool,
			Content:    payload,
			ToolCallID: tc.ID,
		})
		second = append(second, openai.ToolMessage(payload, tc.ID))
	}

	final, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: second,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion after tools: %w", err)
	}
	if len(final.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	appended = append(appended, session.Message{
		Role:    session.RoleAssistant,
		Content: final.Choices[0].Message.Content,
	})
	return appended, nil
}

func (s *ChatService) toolParams() []openai.ChatCompletionToolUnionParam {
	defs := s.registry.Definitions()
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  openai.FunctionParameters(def.Parameters),
		}))
	}
	return out
}

func toMessageParams(history []session.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case session.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case session.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case session.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case session.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}

			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

func storedAssistantMessage(reply openai.ChatCompletionMessage) session.Message {
	stored := session.Message{Role: session.RoleAssistant, Content: reply.Content}
	for _, tc := range reply.ToolCalls {
		stored.ToolCalls = append(stored.ToolCalls, session.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return stored
}
