package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lakeb2b/scraper/models"
)

// deliverTimeout bounds a single delivery attempt. Webhook consumers are
// batch pipelines, not interactive clients, so this is generous.
const deliverTimeout = 30 * time.Second

// Payload is the JSON body posted to webhook endpoints when a job finishes.
type Payload struct {
	Source    string                `json:"source"` // always "lake_b2b_scraper"
	Trigger   string                `json:"trigger"`
	JobID     string                `json:"job_id"`
	Count     int                   `json:"count"`
	Timestamp int64                 `json:"timestamp"`
	Data      []*models.ScrapedData `json:"data"`
}

// NewPayload builds a payload for one finished job.
func NewPayload(trigger, jobID string, data []*models.ScrapedData) *Payload {
	return &Payload{
		Source:    "lake_b2b_scraper",
		Trigger:   trigger,
		JobID:     jobID,
		Count:     len(data),
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
}

// Deliver posts a payload synchronously. The body is signed with
// HMAC-SHA256 when secret is non-empty.
// Header: X-Scraper-Signature: sha256=<hex>
// Any 2xx or 3xx response counts as delivered.
func Deliver(ctx context.Context, url, secret string, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LakeScraper-Webhook/1.0")

	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-Scraper-Signature", "sha256="+sig)
	}

	client := &http.Client{Timeout: deliverTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync posts a payload in the background with up to 3 retries.
// Retry intervals: 1s, 5s, 30s.
func DeliverAsync(url, secret string, payload *Payload) {
	go func() {
		delays := []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
		for attempt, delay := range delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
			err := Deliver(ctx, url, secret, payload)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", url,
					"trigger", payload.Trigger,
					"job_id", payload.JobID,
					"count", payload.Count,
					"attempt", attempt+1,
				)
				return
			}
			slog.Warn("webhook delivery failed",
				"url", url,
				"trigger", payload.Trigger,
				"job_id", payload.JobID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", url,
			"trigger", payload.Trigger,
			"job_id", payload.JobID,
		)
	}()
}
