package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second
)

// MessageHandler receives every inbound text message.
type MessageHandler func(ctx context.Context, msg *Message)

// Poller implements long-polling for receiving Telegram updates.
type Poller struct {
	client  *Client
	handle  MessageHandler
	logger  *slog.Logger
	timeout int
	allowed []string
	pause   time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a new Poller.
func NewPoller(client *Client, handle MessageHandler, logger *slog.Logger, config Config) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		client:  client,
		handle:  handle,
		logger:  logger,
		timeout: config.PollingTimeout,
		allowed: config.AllowedUpdates,
		pause:   errorPauseDuration,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine.
func (p *Poller) Start() {
	go p.loop()
}

// Stop cancels the in-flight getUpdates call and waits for the loop to
// finish. It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
}

// loop runs the long-polling loop until Stop() is called.
func (p *Poller) loop() {
	defer close(p.done)

	var offset int
	var consecutiveErrors int

	for p.ctx.Err() == nil {
		updates, err := p.client.GetUpdates(p.ctx, GetUpdatesRequest{
			Offset:         offset,
			Timeout:        p.timeout,
			AllowedUpdates: p.allowed,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			consecutiveErrors++
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= maxConsecutivePollingErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", p.pause,
				)
				timer := time.NewTimer(p.pause)
				select {
				case <-p.ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
				consecutiveErrors = 0
			}
			continue
		}

		consecutiveErrors = 0

		for i := range updates {
			offset = updates[i].UpdateID + 1
			p.handleUpdate(&updates[i])
		}
	}
}

// handleUpdate forwards text messages; everything else is dropped.
func (p *Poller) handleUpdate(update *Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.Text == "" {
		p.logger.Debug("skipping update", "update_id", update.UpdateID)
		return
	}
	p.handle(p.ctx, msg)
}
