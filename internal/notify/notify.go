// Package notify delivers best-effort messages (agent invitations, lead
// created alerts) outside the write path of the CRM engine.
package notify

import (
	"context"
	"errors"
)

// Kind identifies the event a message was raised for.
type Kind string

const (
	KindLeadCreated  Kind = "lead_created"
	KindAgentInvited Kind = "agent_invited"
)

var (
	ErrNoRecipient       = errors.New("notification has no recipient")
	ErrQueueFull         = errors.New("notification queue is full")
	ErrDispatcherClosed  = errors.New("notification dispatcher is closed")
	ErrNotifierMisconfig = errors.New("notifier is misconfigured")
)

// Message is a single notification addressed to one recipient.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks the message can be delivered.
func (m Message) Validate() error {
	if m.To == "" {
		return ErrNoRecipient
	}
	return nil
}

// Notifier sends a message. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
