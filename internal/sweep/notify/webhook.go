package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier sends alerts via webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends an alert to webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, msg AlertMessage) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	content := formatAlertMessage(msg)
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: content},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatAlertMessage(msg AlertMessage) string {
	var b strings.Builder
	b.WriteString("[Delinquency Sweep]\n")
	if msg.TenantID != "" {
		fmt.Fprintf(&b, "Tenant: %s\n", msg.TenantID)
	}
	if msg.RunAt != "" {
		fmt.Fprintf(&b, "Run: %s\n", msg.RunAt)
	}
	fmt.Fprintf(&b, "Scanned: %d\n", msg.Scanned)
	fmt.Fprintf(&b, "Overdue: %d\n", msg.Overdue)
	fmt.Fprintf(&b, "Defaulted: %d\n", msg.Defaulted)
	if msg.DryRun {
		b.WriteString("Mode: dry-run\n")
	}
	if len(msg.CreditIDs) > 0 {
		fmt.Fprintf(&b, "Credits: %s\n", strings.Join(msg.CreditIDs, ", "))
	}
	return strings.TrimSpace(b.String())
}
