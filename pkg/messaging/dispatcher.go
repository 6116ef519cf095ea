package messaging

import (
	"io"
	"net/http"

	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/flexcard"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Sender is the outbound surface services depend on. Reply preserves
// message order within one call. Failed sends are logged, never
// retried.
type Sender interface {
	Reply(replyToken string, messages ...linebot.SendingMessage) error
	Push(to string, messages ...linebot.SendingMessage) error
}

// Dispatcher wraps the LINE SDK client: webhook parsing (signature
// verification included), message sending and content download.
type Dispatcher struct {
	bot    *linebot.Client
	logger logger.ILogger
}

func NewDispatcher(channelSecret, channelAccessToken string, log logger.ILogger) (*Dispatcher, error) {
	bot, err := linebot.New(channelSecret, channelAccessToken)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{bot: bot, logger: log}, nil
}

// ParseRequest verifies the X-Line-Signature header against the channel
// secret and decodes the webhook events. Returns
// linebot.ErrInvalidSignature on mismatch.
func (d *Dispatcher) ParseRequest(req *http.Request) ([]*linebot.Event, error) {
	return d.bot.ParseRequest(req)
}

func (d *Dispatcher) Reply(replyToken string, messages ...linebot.SendingMessage) error {
	_, err := d.bot.ReplyMessage(replyToken, messages...).Do()
	if err != nil {
		d.logger.Error("messaging", "reply failed", map[string]interface{}{"error": err.Error()})
	}
	return err
}

func (d *Dispatcher) Push(to string, messages ...linebot.SendingMessage) error {
	_, err := d.bot.PushMessage(to, messages...).Do()
	if err != nil {
		d.logger.Error("messaging", "push failed", map[string]interface{}{"error": err.Error()})
	}
	return err
}

// Content downloads the binary payload of a media message (the meal
// photos).
func (d *Dispatcher) Content(messageID string) ([]byte, error) {
	res, err := d.bot.GetMessageContent(messageID).Do()
	if err != nil {
		return nil, err
	}
	defer res.Content.Close()
	return io.ReadAll(res.Content)
}

// TextMessage wraps the SDK constructor so services do not import the
// SDK for the common case.
func TextMessage(text string) linebot.SendingMessage {
	return linebot.NewTextMessage(text)
}

// FlexMessage converts a rendered card into a sendable Flex message.
func FlexMessage(card flexcard.Card) (linebot.SendingMessage, error) {
	container, err := linebot.UnmarshalFlexMessageJSON(card.JSON)
	if err != nil {
		return nil, err
	}
	return linebot.NewFlexMessage(card.AltText, container), nil
}
