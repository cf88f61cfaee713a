package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifierWithLogger(zerolog.New(&buf))

	err := n.Notify(context.Background(), Message{Kind: KindAgentInvited, To: "a1@example.com", Subject: "You are invited to be an agent!"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"to":"a1@example.com"`)
	require.Contains(t, buf.String(), `"kind":"agent_invited"`)

	require.ErrorIs(t, n.Notify(context.Background(), Message{}), ErrNoRecipient)
}

func TestNotifierFunc(t *testing.T) {
	var got Message
	n := NotifierFunc(func(_ context.Context, msg Message) error {
		got = msg
		return nil
	})

	require.NoError(t, n.Notify(context.Background(), Message{To: "x@example.com"}))
	require.Equal(t, "x@example.com", got.To)
}

func TestSMTPConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SMTPConfig
		wantErr bool
	}{
		{name: "valid", cfg: SMTPConfig{Addr: "localhost:25", From: "crm@example.com"}},
		{name: "missing addr", cfg: SMTPConfig{From: "crm@example.com"}, wantErr: true},
		{name: "missing port", cfg: SMTPConfig{Addr: "localhost", From: "crm@example.com"}, wantErr: true},
		{name: "missing from", cfg: SMTPConfig{Addr: "localhost:25"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotifierMisconfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSMTPNotifier_Notify(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Addr: "mail.example.com:587", From: "crm@example.com", Username: "crm", Password: "secret"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotBody string
	)
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotBody = string(msg)
		require.NotNil(t, a)
		require.Equal(t, "crm@example.com", from)
		return nil
	}

	err = n.Notify(context.Background(), Message{
		To:      "a1@example.com",
		Subject: "You are invited\r\nBcc: evil@example.com",
		Body:    "You were added as an agent on leadcrm.",
	})
	require.NoError(t, err)
	require.Equal(t, "mail.example.com:587", gotAddr)
	require.Equal(t, []string{"a1@example.com"}, gotTo)
	require.Contains(t, gotBody, "Subject: You are invited  Bcc: evil@example.com\r\n")
	require.Contains(t, gotBody, "You were added as an agent on leadcrm.")

	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err = n.Notify(context.Background(), Message{To: "a1@example.com"})
	require.ErrorContains(t, err, "connection refused")
}

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)

	go ns.Start()
	require.True(t, ns.ReadyForConnections(10*time.Second), "NATS server not ready")
	t.Cleanup(ns.Shutdown)

	return ns
}

func TestNATSNotifier_Publishes(t *testing.T) {
	ns := runNATSServer(t)

	n, err := DialNATS(ns.ClientURL(), "")
	require.NoError(t, err)
	defer n.Close() //nolint:errcheck

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	s, err := sub.SubscribeSync(DefaultSubjectPrefix + ".>")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	msg := Message{Kind: KindLeadCreated, To: "owner@example.com", Subject: "A lead has been created"}
	require.NoError(t, n.Notify(context.Background(), msg))

	got, err := s.NextMsg(5 * time.Second)
	require.NoError(t, err)
	require.Equal(t, "leadcrm.notifications.lead_created", got.Subject)

	var decoded Message
	require.NoError(t, json.Unmarshal(got.Data, &decoded))
	require.Equal(t, msg, decoded)
}

func TestNATSNotifier_Subject(t *testing.T) {
	n := NewNATSNotifier(nil, "crm.events")
	require.Equal(t, "crm.events.agent_invited", n.Subject(KindAgentInvited))
	require.Equal(t, "crm.events.generic", n.Subject(""))
	require.NoError(t, n.Close())
}
