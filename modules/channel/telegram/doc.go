// Package telegram implements cronbot's Telegram transport.
//
// It talks to the Bot API over raw net/http + encoding/json and provides:
//
//   - outbound notifications to the administrator chat, chunked to the
//     Bot API's 4096-character limit
//   - a long-polling receiver that hands text messages to a command.Router
//     and replies in the originating chat
//
// Channel implements notify.Notifier and the core Starter/Stopper lifecycle.
package telegram
