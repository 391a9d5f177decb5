package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/flemzord/cronbot/internal/command"
	"github.com/flemzord/cronbot/internal/core"
	"github.com/flemzord/cronbot/internal/notify"
)

// Compile-time interface guards.
var (
	_ notify.Notifier = (*Channel)(nil)
	_ core.Starter    = (*Channel)(nil)
	_ core.Stopper    = (*Channel)(nil)
)

// Channel is the Telegram bot: it notifies the administrator chat and
// answers chat commands through a command.Router.
type Channel struct {
	config Config
	client *Client
	router *command.Router
	logger *slog.Logger

	mu      sync.Mutex
	botUser *User
	poller  *Poller
}

// New validates cfg and builds a Channel. router may be nil, in which case
// inbound messages are ignored and no poller is started.
func New(cfg Config, router *command.Router, logger *slog.Logger) (*Channel, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		config: cfg,
		client: NewClient(cfg.Token, cfg.APIURL),
		router: router,
		logger: logger,
	}, nil
}

// Start validates the token with getMe, clears any webhook and starts
// the long-polling receiver.
func (c *Channel) Start() error {
	ctx := context.Background()

	user, err := c.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	c.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	if c.router == nil {
		c.mu.Lock()
		c.botUser = user
		c.mu.Unlock()
		return nil
	}
	c.router.SetBotUsername(user.Username)

	if err := c.client.DeleteWebhook(ctx); err != nil {
		return fmt.Errorf("telegram: deleteWebhook failed: %w", err)
	}

	poller := NewPoller(c.client, c.handleMessage, c.logger, c.config)
	c.mu.Lock()
	c.botUser = user
	c.poller = poller
	c.mu.Unlock()

	poller.Start()
	c.logger.Info("telegram polling started",
		"timeout", c.config.PollingTimeout,
	)
	return nil
}

// Stop stops the poller and waits for it to exit.
func (c *Channel) Stop(_ context.Context) error {
	c.logger.Info("telegram channel stopping")

	c.mu.Lock()
	poller := c.poller
	c.poller = nil
	c.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	return nil
}

// BotUser returns the authenticated bot, or nil before Start.
func (c *Channel) BotUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.botUser
}

// Notify sends text to the administrator chat.
func (c *Channel) Notify(ctx context.Context, text string) error {
	return c.send(ctx, c.config.AdminChatID, text, 0)
}

// send delivers text as one or more plain-text messages.
func (c *Channel) send(ctx context.Context, chatID, text string, threadID int) error {
	for _, chunk := range splitText(text, c.config.MaxMessageLength) {
		if _, err := c.client.SendMessage(ctx, SendMessageRequest{
			ChatID:                chatID,
			Text:                  chunk,
			DisableWebPagePreview: true,
			MessageThreadID:       threadID,
		}); err != nil {
			return fmt.Errorf("telegram: send to %s: %w", chatID, err)
		}
	}
	return nil
}

// handleMessage routes a chat command and replies in the originating chat.
func (c *Channel) handleMessage(ctx context.Context, msg *Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	var senderID string
	if msg.From != nil {
		senderID = strconv.FormatInt(msg.From.ID, 10)
	}

	reply, err := c.router.Dispatch(ctx, msg.Text, chatID, senderID)
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return
	case err != nil:
		c.logger.Error("command failed", "chat", chatID, "error", err)
		return
	case reply == "":
		return
	}

	if err := c.send(ctx, chatID, reply, msg.MessageThreadID); err != nil {
		c.logger.Error("command reply failed", "chat", chatID, "error", err)
	}
}
