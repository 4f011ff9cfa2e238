// Package notify delivers push notifications to registered devices.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bookline-io/bookline/internal/config"
)

// Message is a push notification addressed to a single device token
type Message struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier sends push notifications. Delivery is best-effort; callers log
// failures rather than propagating them.
type Notifier interface {
	Send(msg Message) error
}

// FCMClient sends notifications through the FCM legacy HTTP endpoint
type FCMClient struct {
	serverKey string
	endpoint  string
	client    *http.Client
}

// NewFCMClient creates a notifier from configuration. Returns nil when no
// server key is configured so callers can skip sending.
func NewFCMClient(cfg *config.Config) *FCMClient {
	if cfg.FCM.ServerKey == "" {
		return nil
	}
	return &FCMClient{
		serverKey: cfg.FCM.ServerKey,
		endpoint:  cfg.FCM.Endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmPayload struct {
	To   string `json:"to"`
	Data struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"data"`
}

// Send posts the message to the FCM endpoint
func (c *FCMClient) Send(msg Message) error {
	var payload fcmPayload
	payload.To = msg.To
	payload.Data.Title = msg.Title
	payload.Data.Body = msg.Body

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm send failed with status %d", resp.StatusCode)
	}
	return nil
}
