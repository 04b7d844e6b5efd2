package gmail

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

// financialQuery narrows the remote search to money-movement vocabulary so
// most irrelevant mail never leaves Google's side.
const financialQuery = "(invoice OR receipt OR credited OR debited OR payment OR spent)"

type gmailService struct {
	log         logger.Logger
	credentials interfaces.CredentialService
}

func NewGmailService(log logger.Logger, credentials interfaces.CredentialService) interfaces.MailService {
	return &gmailService{
		log:         log,
		credentials: credentials,
	}
}

func (s *gmailService) ListMessageIDs(ctx context.Context, user *models.UserProfile, after time.Time, maxResults int64) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailService.ListMessageIDs")
	defer span.Finish()
	tracing.TagComponentGoogle(span)
	tracing.TagUserId(span, user.ID)
	span.LogKV("after", after.Format(time.RFC3339), "maxResults", maxResults)

	client, err := s.clientFor(ctx, user)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	query := fmt.Sprintf("after:%s %s", after.Format("2006/01/02"), financialQuery)

	response, err := client.Users.Messages.List("me").
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		wrapped := wrapGoogleError("failed to list messages", err)
		tracing.TraceErr(span, wrapped)
		return nil, wrapped
	}

	ids := make([]string, 0, len(response.Messages))
	for _, message := range response.Messages {
		ids = append(ids, message.Id)
	}
	span.LogKV("result.count", len(ids))

	return ids, nil
}

func (s *gmailService) GetMessage(ctx context.Context, user *models.UserProfile, messageID string) (*interfaces.RawMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailService.GetMessage")
	defer span.Finish()
	tracing.TagComponentGoogle(span)
	tracing.TagUserId(span, user.ID)
	span.SetTag("message.id", messageID)

	client, err := s.clientFor(ctx, user)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	message, err := client.Users.Messages.Get("me", messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		wrapped := wrapGoogleError("failed to get message", err)
		tracing.TraceErr(span, wrapped)
		return nil, wrapped
	}

	return convertMessage(message), nil
}

func (s *gmailService) clientFor(ctx context.Context, user *models.UserProfile) (*gmail.Service, error) {
	token, err := s.credentials.EnsureValidToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
}

// convertMessage validates the provider shape at the boundary; the pipeline
// never touches gmail.Message directly.
func convertMessage(message *gmail.Message) *interfaces.RawMessage {
	if message == nil {
		return nil
	}
	return &interfaces.RawMessage{
		ID:           message.Id,
		Snippet:      message.Snippet,
		InternalDate: time.UnixMilli(message.InternalDate).UTC(),
		Payload:      convertPart(message.Payload),
	}
}

func convertPart(part *gmail.MessagePart) *interfaces.MessagePart {
	if part == nil {
		return nil
	}
	converted := &interfaces.MessagePart{
		MimeType: part.MimeType,
	}
	if part.Body != nil {
		converted.Data = part.Body.Data
	}
	for _, header := range part.Headers {
		converted.Headers = append(converted.Headers, interfaces.Header{
			Name:  header.Name,
			Value: header.Value,
		})
	}
	for _, child := range part.Parts {
		converted.Parts = append(converted.Parts, convertPart(child))
	}
	return converted
}
