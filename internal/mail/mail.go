// Package mail sends the comment-notification email. Delivery is
// fire-and-forget: a send failure is logged by the caller and never
// fails the request that triggered it.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Notifier delivers notifications to post authors.
type Notifier interface {
	CommentAdded(recipient, postTitle string) error
}

// SMTPNotifier sends through a plain SMTP relay.
type SMTPNotifier struct {
	Addr string // host:port of the relay
	From string
}

func (n *SMTPNotifier) CommentAdded(recipient, postTitle string) error {
	if n.Addr == "" {
		return fmt.Errorf("smtp relay not configured")
	}
	msg := strings.Join([]string{
		"From: " + n.From,
		"To: " + recipient,
		"Subject: New comment on your post",
		"",
		fmt.Sprintf("A comment was added to your post %q.", postTitle),
		"",
	}, "\r\n")
	return smtp.SendMail(n.Addr, nil, n.From, []string{recipient}, []byte(msg))
}

// Discard drops notifications. Used when no relay is configured and in
// tests.
type Discard struct{}

func (Discard) CommentAdded(string, string) error { return nil }
