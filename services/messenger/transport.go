// File: services/messenger/transport.go
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookline/utils"
)

// HTTPSender posts outbound messages to the chat gateway's delivery
// endpoint.
type HTTPSender struct {
	URL    string
	Client *http.Client
}

// NewHTTPSender builds an HTTPSender with a bounded request timeout.
func NewHTTPSender(url string) *HTTPSender {
	return &HTTPSender{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type outboundMessage struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

func (s *HTTPSender) SendText(ctx context.Context, phone, text string) error {
	b, err := json.Marshal(outboundMessage{Phone: phone, Text: text})
	if err != nil {
		return fmt.Errorf("encode outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver outbound message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender is the development transport: it only logs what would be sent.
type LogSender struct{}

func (LogSender) SendText(_ context.Context, phone, text string) error {
	utils.GetLogger().Info("outbound message (log transport)",
		zap.String("phone", phone), zap.String("text", text))
	return nil
}
