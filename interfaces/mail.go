package interfaces

import (
	"context"
	"time"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

// MailService lists and fetches a user's messages from the mail provider.
// Implementations must return SyncError kinds so the orchestrator can tell
// credential failures from rate limiting.
type MailService interface {
	ListMessageIDs(ctx context.Context, user *models.UserProfile, after time.Time, maxResults int64) ([]string, error)
	GetMessage(ctx context.Context, user *models.UserProfile, messageID string) (*RawMessage, error)
}

// RawMessage is the provider-owned message shape, validated at the
// collaborator boundary. The pipeline only reads it.
type RawMessage struct {
	ID           string
	Snippet      string
	InternalDate time.Time
	Payload      *MessagePart
}

// MessagePart is one node of the (possibly nested) MIME payload tree.
type MessagePart struct {
	MimeType string
	// Data is base64 url-safe encoded body content; empty for containers.
	Data    string
	Headers []Header
	Parts   []*MessagePart
}

type Header struct {
	Name  string
	Value string
}

// Header returns the first header value with the given name, or "".
func (m *RawMessage) Header(name string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}
