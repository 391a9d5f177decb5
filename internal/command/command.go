// Package command routes inbound chat commands ("/health") to handlers.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned by Dispatch for text that is not a
// registered command.
var ErrUnknownCommand = errors.New("command: unknown command")

// Request is an inbound command.
type Request struct {
	// Name is the command without the leading slash or bot suffix.
	Name string
	// Args is the text following the command, trimmed.
	Args string
	// ChatID identifies the chat the command came from.
	ChatID string
	// SenderID identifies the user who sent it.
	SenderID string
}

// Handler produces the reply text for a command.
type Handler func(ctx context.Context, req Request) (string, error)

// Router maps command names to handlers.
type Router struct {
	mu          sync.RWMutex
	handlers    map[string]Handler
	botUsername string
	logger      *slog.Logger
	onHandled   func(name string)
}

// NewRouter creates an empty Router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// SetBotUsername restricts "/cmd@name" addressing to this bot. Commands
// without a suffix are always accepted.
func (r *Router) SetBotUsername(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botUsername = name
}

// OnHandled registers a hook invoked after every successfully dispatched command.
func (r *Router) OnHandled(fn func(name string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onHandled = fn
}

// Handle registers h under name (without the slash). Registering the same
// name twice is an error.
func (r *Router) Handle(name string, h Handler) error {
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	if name == "" {
		return errors.New("command: empty command name")
	}
	if h == nil {
		return fmt.Errorf("command: nil handler for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("command: duplicate command %q", name)
	}
	r.handlers[name] = h
	return nil
}

// Commands returns the registered command names.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Parse extracts a command from message text. ok is false for text that is
// not a command or is addressed to a different bot.
func (r *Router) Parse(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	head, target, addressed := strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}

	r.mu.RLock()
	bot := r.botUsername
	r.mu.RUnlock()
	if addressed && bot != "" && !strings.EqualFold(target, bot) {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// Dispatch parses text and runs the matching handler. It returns
// ErrUnknownCommand when text is not a registered command.
func (r *Router) Dispatch(ctx context.Context, text, chatID, senderID string) (string, error) {
	name, args, ok := r.Parse(text)
	if !ok {
		return "", ErrUnknownCommand
	}

	r.mu.RLock()
	h, exists := r.handlers[name]
	hook := r.onHandled
	r.mu.RUnlock()
	if !exists {
		return "", ErrUnknownCommand
	}

	r.logger.Debug("command: dispatch", "command", name, "chat", chatID)
	reply, err := h(ctx, Request{Name: name, Args: args, ChatID: chatID, SenderID: senderID})
	if err != nil {
		return "", fmt.Errorf("command %s: %w", name, err)
	}
	if hook != nil {
		hook(name)
	}
	return reply, nil
}
