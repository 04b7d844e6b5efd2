package extract

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/enum"
)

var fallbackTime = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

func encodeBody(text string) string {
	return base64.URLEncoding.EncodeToString([]byte(text))
}

func plainMessage(body string) *interfaces.RawMessage {
	return &interfaces.RawMessage{
		ID:           "msg-1",
		InternalDate: fallbackTime,
		Payload: &interfaces.MessagePart{
			MimeType: "text/plain",
			Data:     encodeBody(body),
		},
	}
}

func TestDecodeBody_RoundTrip(t *testing.T) {
	original := "Rs. 1,250.00 debited from A/c X1234 on 05-06-2024"

	decoded := DecodeBody(plainMessage(original))

	require.Equal(t, original, decoded)
}

func TestDecodeBody_PrefersPlainTextOverHtml(t *testing.T) {
	message := &interfaces.RawMessage{
		ID: "msg-2",
		Payload: &interfaces.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*interfaces.MessagePart{
				{MimeType: "text/html", Data: encodeBody("<p>₹500 debited</p>")},
				{MimeType: "text/plain", Data: encodeBody("₹500 debited")},
			},
		},
	}

	require.Equal(t, "₹500 debited", DecodeBody(message))
}

func TestDecodeBody_NestedMultipart(t *testing.T) {
	message := &interfaces.RawMessage{
		ID: "msg-3",
		Payload: &interfaces.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*interfaces.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*interfaces.MessagePart{
						{MimeType: "text/plain", Data: encodeBody("payment received")},
					},
				},
			},
		},
	}

	require.Equal(t, "payment received", DecodeBody(message))
}

func TestDecodeBody_HtmlFallbackStripsTags(t *testing.T) {
	message := &interfaces.RawMessage{
		ID: "msg-4",
		Payload: &interfaces.MessagePart{
			MimeType: "text/html",
			Data:     encodeBody("<html><body><b>Rs. 99</b> spent at Cafe</body></html>"),
		},
	}

	decoded := DecodeBody(message)
	require.Contains(t, decoded, "Rs. 99")
	require.Contains(t, decoded, "spent at Cafe")
	require.NotContains(t, decoded, "<b>")
}

func TestDecodeBody_InvalidBytesDropped(t *testing.T) {
	raw := append([]byte("Rs. 100 paid"), 0xff, 0xfe)
	message := &interfaces.RawMessage{
		ID: "msg-5",
		Payload: &interfaces.MessagePart{
			MimeType: "text/plain",
			Data:     base64.URLEncoding.EncodeToString(raw),
		},
	}

	require.Equal(t, "Rs. 100 paid", DecodeBody(message))
}

func TestDecodeBody_UnpaddedBase64(t *testing.T) {
	message := &interfaces.RawMessage{
		ID: "msg-6",
		Payload: &interfaces.MessagePart{
			MimeType: "text/plain",
			Data:     base64.RawURLEncoding.EncodeToString([]byte("₹42 credited")),
		},
	}

	require.Equal(t, "₹42 credited", DecodeBody(message))
}

func TestDecodeBody_NothingDecodable(t *testing.T) {
	require.Equal(t, "", DecodeBody(nil))
	require.Equal(t, "", DecodeBody(&interfaces.RawMessage{ID: "msg-7"}))
}

func TestIsFinanciallyRelevant(t *testing.T) {
	require.True(t, IsFinanciallyRelevant("Rs. 100 debited from your account"))
	require.True(t, IsFinanciallyRelevant("Your INVOICE is attached"))
	require.True(t, IsFinanciallyRelevant("cashback credited to wallet"))

	require.False(t, IsFinanciallyRelevant("Your OTP is 482913"))
	require.False(t, IsFinanciallyRelevant(""))
	require.False(t, IsFinanciallyRelevant("See you at lunch tomorrow"))
}

func TestExtract_DebitWithAccountAndBodyDate(t *testing.T) {
	body := "Rs. 1,250.00 debited from A/c X1234 on 05-06-2024"

	candidate := Extract(body, fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, enum.TransactionDebited, candidate.Type)
	require.Equal(t, 1250.00, candidate.Amount)
	require.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), candidate.OccurredAt)
	require.Equal(t, "X1234", candidate.Account)
}

func TestExtract_CashbackCredit(t *testing.T) {
	candidate := Extract("Thank you! ₹300 credited to your wallet as cashback", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, enum.TransactionCredited, candidate.Type)
	require.Equal(t, 300.00, candidate.Amount)
}

func TestExtract_NoAmountReturnsNil(t *testing.T) {
	require.Nil(t, Extract("Your payment failed, please retry", fallbackTime))
	require.Nil(t, Extract("", fallbackTime))
	require.Nil(t, Extract("   \n  ", fallbackTime))
}

func TestExtract_CreditWinsTieBreak(t *testing.T) {
	candidate := Extract("Rs. 250 debited earlier has been refund credited back", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, enum.TransactionCredited, candidate.Type)
}

func TestExtract_UnknownTypeKept(t *testing.T) {
	candidate := Extract("Transaction alert: Rs. 75.50 on your card", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, enum.TransactionUnknown, candidate.Type)
	require.Equal(t, 75.50, candidate.Amount)
}

func TestExtract_LabeledAndSuffixedAmounts(t *testing.T) {
	candidate := Extract("Payment confirmation. Amount: 1,999.00 towards order 8812", fallbackTime)
	require.NotNil(t, candidate)
	require.Equal(t, 1999.00, candidate.Amount)

	candidate = Extract("Invoice total: 450", fallbackTime)
	require.NotNil(t, candidate)
	require.Equal(t, 450.00, candidate.Amount)

	candidate = Extract("You spent 320.50 INR today", fallbackTime)
	require.NotNil(t, candidate)
	require.Equal(t, 320.50, candidate.Amount)
}

func TestExtract_TextualDate(t *testing.T) {
	candidate := Extract("Rs. 800 paid on 1st Jan 2024 for subscription", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), candidate.OccurredAt)
}

func TestExtract_InvalidDateFallsBack(t *testing.T) {
	candidate := Extract("Rs. 500 debited on 45-13-2024", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, fallbackTime, candidate.OccurredAt)
}

func TestExtract_DescriptionIsFirstLineTruncated(t *testing.T) {
	candidate := Extract("Rs. 120 spent at Grocery Mart\nsecond line ignored", fallbackTime)
	require.NotNil(t, candidate)
	require.Equal(t, "Rs. 120 spent at Grocery Mart", candidate.Description)

	long := "Rs. 10 paid "
	for len(long) < 400 {
		long += "x"
	}
	candidate = Extract(long, fallbackTime)
	require.NotNil(t, candidate)
	require.LessOrEqual(t, len(candidate.Description), 255)
}

func TestExtract_SourceAndAccountDefaults(t *testing.T) {
	candidate := Extract("Rs. 60 debited", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, "Unknown", candidate.Source)
	require.Equal(t, "Not found", candidate.Account)
}

func TestExtract_SourceFromPurchasePhrase(t *testing.T) {
	candidate := Extract("Rs. 999 spent, purchase at Amazon Retail on 02-03-2024", fallbackTime)

	require.NotNil(t, candidate)
	require.Equal(t, "Amazon Retail on 02-03-2024", candidate.Source)
}
