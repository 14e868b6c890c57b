// Package chat declares the chat hub used by loader tests.
package chat

import (
	"context"
	"iter"

	"github.com/broady/hubgen/async"
	"github.com/broady/hubgen/loader/testdata/chat/model"
)

// Chat is the chat hub.
//
//hubgen:hub receiver=ChatClient path=/hubs/chat
type Chat interface {
	// Send posts a message.
	Send(ctx context.Context, msg model.Message) error
	History(ctx context.Context, room string, limit int) (model.Page[model.Message], error)
	Count(key string) async.Future[int]
	Join(ctx context.Context, _ string, token model.Token) async.Task
	Watch(ctx context.Context, room string) iter.Seq2[model.Message, error]
	Typing(ctx context.Context) <-chan model.User
	Members(ctx context.Context, ids ...string) ([]model.User, error)
}

// ChatClient receives chat events.
type ChatClient interface {
	Received(msg model.Message) error
	Kicked(reason string)
}

// Presence is reported to admin tooling.
//
//hubgen:include
type Presence struct {
	Online map[string]bool `json:"online"`
	Roles  map[model.Role]model.IDs
	Thread *model.Thread `json:"thread,omitempty"`
}

// Admin is a hub without a receiver.
//
//hubgen:hub
type Admin interface {
	Ban(ctx context.Context, user string) error
}
