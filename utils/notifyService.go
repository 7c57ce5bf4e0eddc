package utils

import (
	"log"
	"time"

	"trainhub/config"

	"github.com/go-resty/resty/v2"
)

var notifyClient = resty.New().SetTimeout(10 * time.Second)

// NotifyWebhook posts an event to the configured webhook endpoint.
// Best-effort: called with `go` after a transition commits, failures are
// logged and swallowed.
func NotifyWebhook(event string, payload map[string]interface{}) {
	url := config.AppConfig.NotifyWebhookURL
	if url == "" {
		return
	}

	body := map[string]interface{}{
		"event":       event,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
		"data":        payload,
	}

	resp, err := notifyClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		log.Printf("[NOTIFY] webhook %s failed: %v", event, err)
		return
	}
	if resp.StatusCode() >= 400 {
		log.Printf("[NOTIFY] webhook %s rejected: %d", event, resp.StatusCode())
	}
}
