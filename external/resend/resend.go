package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

type ResendMailer struct {
	apiKey  string
	from    string
	opsTo   string
	client  *http.Client
	baseURL string
}

func NewResendMailer(from string) (*ResendMailer, error) {
	key := os.Getenv("RESEND_API_KEY")
	if key == "" {
		return nil, errors.New("RESEND_API_KEY not set")
	}
	opsTo := os.Getenv("OPS_ALERT_EMAIL")
	if opsTo == "" {
		return nil, errors.New("OPS_ALERT_EMAIL not set")
	}

	return &ResendMailer{
		apiKey: key,
		from:   from,
		opsTo:  opsTo,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOpsAlert notifies operators about an orphaned external resource that
// needs a manual reconciliation pass.
func (m *ResendMailer) SendOpsAlert(ctx context.Context, subject, body string) error {
	return m.send(ctx, sendRequest{
		From:    m.from,
		To:      []string{m.opsTo},
		Subject: "[ops] " + subject,
		HTML:    "<pre>" + body + "</pre>",
	})
}

// SendReceiptEmail confirms a completed rental payment to the customer.
func (m *ResendMailer) SendReceiptEmail(ctx context.Context, toEmail string, rentalID int64) error {
	return m.send(ctx, sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: "Your dumpster rental is confirmed",
		HTML: fmt.Sprintf(`
			<p>Thanks for your order!</p>
			<p>Your payment for rental #%d was received. We'll reach out
			before your delivery date to confirm placement details.</p>
		`, rentalID),
	})
}

func (m *ResendMailer) send(ctx context.Context, body sendRequest) error {
	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New("failed to send email: " + buf.String())
	}

	return nil
}
