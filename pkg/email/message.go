package email

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSenderName is prepended to bare "from" addresses.
const DefaultSenderName = "The Jazz Coasters"

// OutgoingMessage is one provider-neutral email.
type OutgoingMessage struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message through an email provider.
type Sender interface {
	Send(ctx context.Context, msg OutgoingMessage) error
	Name() string
}

// FormatSender keeps a "Name <addr>" value as-is and prefixes bare addresses
// with name.
func FormatSender(from, name string) string {
	from = strings.TrimSpace(from)
	if strings.Contains(from, "<") && strings.Contains(from, ">") {
		return from
	}
	if name == "" {
		name = DefaultSenderName
	}
	return fmt.Sprintf("%s <%s>", name, from)
}

var headerSanitizer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func sanitizeHeader(value string) string {
	return strings.TrimSpace(headerSanitizer.Replace(value))
}
