package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/cronbot/internal/command"
)

// fakeBotAPI is a minimal Bot API: getMe, deleteWebhook, a one-shot
// getUpdates, and a recording sendMessage.
type fakeBotAPI struct {
	t        *testing.T
	updates  []Update
	polls    atomic.Int32
	mu       sync.Mutex
	sent     []SendMessageRequest
	sentCh   chan struct{}
	sendFail bool
}

func newFakeBotAPI(t *testing.T, updates []Update) (*fakeBotAPI, *httptest.Server) {
	t.Helper()
	f := &fakeBotAPI{t: t, updates: updates, sentCh: make(chan struct{}, 16)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	switch method {
	case "getMe":
		writeJSON(f.t, w, APIResponse[User]{OK: true, Result: User{ID: 1, IsBot: true, Username: "cron_bot"}})
	case "deleteWebhook":
		writeJSON(f.t, w, APIResponse[bool]{OK: true, Result: true})
	case "getUpdates":
		if f.polls.Add(1) == 1 {
			writeJSON(f.t, w, APIResponse[[]Update]{OK: true, Result: f.updates})
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		writeJSON(f.t, w, APIResponse[[]Update]{OK: true, Result: []Update{}})
	case "sendMessage":
		if f.sendFail {
			writeJSON(f.t, w, APIResponse[json.RawMessage]{ErrorCode: 400, Description: "Bad Request: chat not found"})
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req SendMessageRequest
		if err := json.Unmarshal(body, &req); err != nil {
			f.t.Errorf("decode sendMessage: %v", err)
		}
		f.mu.Lock()
		f.sent = append(f.sent, req)
		f.mu.Unlock()
		f.sentCh <- struct{}{}
		writeJSON(f.t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1}})
	default:
		f.t.Errorf("unexpected method %q", method)
		http.NotFound(w, r)
	}
}

func (f *fakeBotAPI) messages() []SendMessageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SendMessageRequest(nil), f.sent...)
}

func newChannel(t *testing.T, apiURL string, router *command.Router, maxLen int) *Channel {
	t.Helper()
	ch, err := New(Config{
		Token:            "123:abc",
		AdminChatID:      "42",
		APIURL:           apiURL,
		MaxMessageLength: maxLen,
	}, router, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ch
}

func TestChannel_Notify(t *testing.T) {
	api, srv := newFakeBotAPI(t, nil)
	ch := newChannel(t, srv.URL, nil, 0)

	if err := ch.Notify(context.Background(), "🚀 Cron Service Started & Monitoring Enabled"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].ChatID != "42" || sent[0].Text != "🚀 Cron Service Started & Monitoring Enabled" {
		t.Errorf("sent = %+v", sent[0])
	}
}

func TestChannel_NotifyChunks(t *testing.T) {
	api, srv := newFakeBotAPI(t, nil)
	ch := newChannel(t, srv.URL, nil, 10)

	if err := ch.Notify(context.Background(), "aaaa\nbbbb\ncccc"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := len(api.messages()); got != 2 {
		t.Errorf("sent = %d, want 2", got)
	}
}

func TestChannel_NotifyError(t *testing.T) {
	api, srv := newFakeBotAPI(t, nil)
	api.sendFail = true
	ch := newChannel(t, srv.URL, nil, 0)

	err := ch.Notify(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 400 {
		t.Errorf("err = %v, want APIError 400", err)
	}
}

func TestChannel_AnswersCommandsInOriginatingChat(t *testing.T) {
	api, srv := newFakeBotAPI(t, []Update{
		{UpdateID: 1, Message: &Message{MessageID: 5, From: &User{ID: 9}, Chat: Chat{ID: 777}, Text: "hello"}},
		{UpdateID: 2, Message: &Message{MessageID: 6, From: &User{ID: 9}, Chat: Chat{ID: 777}, Text: "/health@other_bot"}},
		{UpdateID: 3, Message: &Message{MessageID: 7, From: &User{ID: 9}, Chat: Chat{ID: 777}, Text: "/health@cron_bot"}},
	})

	router := command.NewRouter(discardLogger())
	var sender atomic.Value
	if err := router.Handle("health", func(_ context.Context, req command.Request) (string, error) {
		sender.Store(req.SenderID)
		return "🩺 Health Check", nil
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	ch := newChannel(t, srv.URL, router, 0)
	if err := ch.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ch.BotUser() == nil || ch.BotUser().Username != "cron_bot" {
		t.Errorf("BotUser = %+v", ch.BotUser())
	}

	select {
	case <-api.sentCh:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply sent")
	}

	if err := ch.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1 (plain text and foreign-bot commands ignored)", len(sent))
	}
	if sent[0].ChatID != "777" || sent[0].Text != "🩺 Health Check" {
		t.Errorf("reply = %+v", sent[0])
	}
	if got, _ := sender.Load().(string); got != "9" {
		t.Errorf("SenderID = %q, want 9", got)
	}
}

func TestChannel_StartRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, APIResponse[json.RawMessage]{ErrorCode: 401, Description: "Unauthorized"})
	}))
	defer srv.Close()

	ch := newChannel(t, srv.URL, command.NewRouter(nil), 0)
	if err := ch.Start(); err == nil {
		t.Fatal("expected getMe error")
	}
	if err := ch.Stop(context.Background()); err != nil {
		t.Errorf("Stop after failed Start: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Token: "bad", AdminChatID: "1"}, nil, nil); err == nil {
		t.Error("expected validation error")
	}
}
