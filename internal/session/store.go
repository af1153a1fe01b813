// Package session keeps per-session conversation logs in process memory.
// Logs are append-only and discarded when the session ends; nothing outlives
// the process.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidRole = errors.New("invalid message role")
)

// ToolCall records a model-initiated tool invocation carried by an assistant
// message, with arguments as raw JSON text.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

func validRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

type conversation struct {
	createdAt time.Time
	messages  []Message
}

// Store is the in-memory session registry.
type Store struct {
	systemPrompt string

	mu       sync.RWMutex
	sessions map[string]*conversation
}

func NewStore(systemPrompt string) *Store {
	return &Store{
		systemPrompt: systemPrompt,
		sessions:     make(map[string]*conversation),
	}
}

// Create opens a session seeded with the system prompt and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()

	conv := &conversation{createdAt: time.Now().UTC()}
	if s.systemPrompt != "" {
		conv.messages = append(conv.messages, Message{Role: RoleSystem, Content: s.systemPrompt})
	}

	s.mu.Lock()
	s.sessions[id] = conv
	s.mu.Unlock()

	return id
}

// Append adds messages to the session log in order. Every message must carry
// one of the four known roles; on a bad role nothing is appended.
func (s *Store) Append(id string, msgs ...Message) error {
	for _, msg := range msgs {
		if !validRole(msg.Role) {
			return ErrInvalidRole
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	conv.messages = append(conv.messages, msgs...)
	return nil
}

// History returns a copy of the session log in append order.
func (s *Store) History(id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]Message, len(conv.messages))
	copy(out, conv.messages)
	return out, nil
}

// End discards the session and its conversation log.
func (s *Store) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}

	delete(s.sessions, id)
	return nil
}
