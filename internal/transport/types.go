// Package transport defines the chat-platform boundary used by the bot and
// the scheduler. The core only ever sees these types; gopkg.in/telebot.v4
// stays inside the telegram subpackage.
package transport

import "context"

type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	Text         string
}

type ChatTarget struct {
	ChatID int64
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Notifier delivers one text payload to one recipient. This is the only
// capability the scheduling loop needs.
type Notifier interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) error
}

// Adapter is a full chat transport: a stream of incoming messages plus the
// outbound Notifier capability.
type Adapter interface {
	Notifier

	Start(ctx context.Context, out chan<- Message) error
	Stop(ctx context.Context) error
}
