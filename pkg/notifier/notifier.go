package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a registry lifecycle event a webhook can subscribe to.
type EventType string

const (
	EventSchemaCheckFailed      EventType = "schema_check.failed"
	EventSchemaVersionPublished EventType = "schema_version.published"
	EventSchemaVersionDeleted   EventType = "schema_version.deleted"
	EventBreakingChangeDetected EventType = "breaking_change.detected"
)

// Event is one occurrence dispatched to interested webhooks.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Webhook is a registered delivery target scoped to an organization.
type Webhook struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	URL            string      `json:"url"`
	Events         []EventType `json:"events"`
	Secret         string      `json:"secret,omitempty"`
	Active         bool        `json:"active"`
	Description    string      `json:"description,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Manager registers webhooks and dispatches events to them.
type Manager struct {
	mu            sync.RWMutex
	webhooks      map[string]*Webhook
	client        *http.Client
	deliveryStore *DeliveryLogStore
	retryWorker   *RetryWorker
	rateLimiter   *RateLimiter
}

// NewManager builds a Manager. Call StartRetryWorker to begin retrying
// failed deliveries in the background.
func NewManager() *Manager {
	deliveryStore := NewDeliveryLogStore(1000)
	retryPolicy := NewRetryPolicy(DefaultRetryConfig())

	m := &Manager{
		webhooks:      make(map[string]*Webhook),
		client:        &http.Client{Timeout: 10 * time.Second},
		deliveryStore: deliveryStore,
		rateLimiter:   NewRateLimiter(100, time.Minute),
	}

	m.retryWorker = NewRetryWorker(m, deliveryStore, retryPolicy)
	return m
}

// StartRetryWorker starts the background retry loop.
func (m *Manager) StartRetryWorker(ctx context.Context) {
	m.retryWorker.Start(ctx, 30*time.Second)
}

// StopRetryWorker stops the background retry loop.
func (m *Manager) StopRetryWorker() {
	m.retryWorker.Stop()
}

// GetDeliveryLogs retrieves delivery logs for a webhook, most recent first.
func (m *Manager) GetDeliveryLogs(webhookID string, limit int) []*DeliveryLog {
	return m.deliveryStore.GetByWebhook(webhookID, limit)
}

// GetDeliveryStats retrieves delivery statistics for a webhook.
func (m *Manager) GetDeliveryStats(webhookID string) DeliveryStats {
	return m.deliveryStore.GetStats(webhookID)
}

// RegisterWebhook registers a new webhook.
func (m *Manager) RegisterWebhook(webhook *Webhook) error {
	if webhook.URL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if len(webhook.Events) == 0 {
		return fmt.Errorf("at least one event type is required")
	}

	webhook.ID = uuid.NewString()
	webhook.Active = true
	webhook.CreatedAt = time.Now()
	webhook.UpdatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhooks[webhook.ID] = webhook
	return nil
}

// UnregisterWebhook removes a webhook.
func (m *Manager) UnregisterWebhook(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.webhooks[id]; !exists {
		return fmt.Errorf("webhook not found")
	}
	delete(m.webhooks, id)
	return nil
}

// UpdateWebhook applies non-zero fields from updates onto a webhook.
func (m *Manager) UpdateWebhook(id string, updates *Webhook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	webhook, exists := m.webhooks[id]
	if !exists {
		return fmt.Errorf("webhook not found")
	}

	if updates.URL != "" {
		webhook.URL = updates.URL
	}
	if len(updates.Events) > 0 {
		webhook.Events = updates.Events
	}
	if updates.Secret != "" {
		webhook.Secret = updates.Secret
	}
	webhook.UpdatedAt = time.Now()
	return nil
}

// ListWebhooks returns all registered webhooks.
func (m *Manager) ListWebhooks() []*Webhook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Webhook, 0, len(m.webhooks))
	for _, w := range m.webhooks {
		out = append(out, w)
	}
	return out
}

// GetWebhook retrieves a webhook by id.
func (m *Manager) GetWebhook(id string) (*Webhook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	webhook, exists := m.webhooks[id]
	if !exists {
		return nil, fmt.Errorf("webhook not found")
	}
	return webhook, nil
}

// DeactivateWebhook stops delivery to a webhook without deleting it.
func (m *Manager) DeactivateWebhook(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	webhook, exists := m.webhooks[id]
	if !exists {
		return fmt.Errorf("webhook not found")
	}
	webhook.Active = false
	webhook.UpdatedAt = time.Now()
	return nil
}

// ActivateWebhook resumes delivery to a previously deactivated webhook.
func (m *Manager) ActivateWebhook(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	webhook, exists := m.webhooks[id]
	if !exists {
		return fmt.Errorf("webhook not found")
	}
	webhook.Active = true
	webhook.UpdatedAt = time.Now()
	return nil
}

// Dispatch fans an event out to every active, subscribed webhook
// asynchronously; Dispatch itself returns once delivery logs are recorded,
// not once delivery completes.
func (m *Manager) Dispatch(ctx context.Context, event *Event) error {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()

	for _, webhook := range m.subscribedWebhooks(event.Type) {
		deliveryLog := &DeliveryLog{
			ID:        uuid.NewString(),
			WebhookID: webhook.ID,
			EventID:   event.ID,
			EventType: event.Type,
			URL:       webhook.URL,
			Status:    DeliveryStatusPending,
			CreatedAt: time.Now(),
		}
		m.deliveryStore.Add(deliveryLog)

		go m.sendWithDeliveryLog(ctx, webhook, event, deliveryLog)
	}

	return nil
}

func (m *Manager) subscribedWebhooks(eventType EventType) []*Webhook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Webhook
	for _, webhook := range m.webhooks {
		if !webhook.Active {
			continue
		}
		for _, et := range webhook.Events {
			if et == eventType {
				out = append(out, webhook)
				break
			}
		}
	}
	return out
}

func (m *Manager) sendWithDeliveryLog(ctx context.Context, webhook *Webhook, event *Event, deliveryLog *DeliveryLog) {
	deliveryLog.Attempts++
	start := time.Now()

	err := m.send(ctx, webhook, event, deliveryLog)
	deliveryLog.Duration = time.Since(start)

	if err != nil {
		retryPolicy := NewRetryPolicy(DefaultRetryConfig())
		if retryPolicy.ShouldRetry(deliveryLog.Attempts, err) {
			deliveryLog.Status = DeliveryStatusRetrying
			nextRetry := retryPolicy.NextRetryTime(deliveryLog.Attempts)
			deliveryLog.NextRetryAt = &nextRetry
			deliveryLog.ErrorMessage = err.Error()
		} else {
			deliveryLog.Status = DeliveryStatusFailed
			deliveryLog.ErrorMessage = err.Error()
			now := time.Now()
			deliveryLog.CompletedAt = &now
		}
	} else {
		deliveryLog.Status = DeliveryStatusSuccess
		now := time.Now()
		deliveryLog.CompletedAt = &now
	}

	m.deliveryStore.Update(deliveryLog)
}

func (m *Manager) send(ctx context.Context, webhook *Webhook, event *Event, deliveryLog *DeliveryLog) error {
	if !m.rateLimiter.Allow(webhook.ID) {
		return fmt.Errorf("rate limit exceeded for webhook %s", webhook.ID)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Registry-Event", string(event.Type))
	req.Header.Set("X-Registry-Event-ID", event.ID)
	req.Header.Set("X-Registry-Delivery", time.Now().Format(time.RFC3339))

	if webhook.Secret != "" {
		req.Header.Set("X-Registry-Signature", generateSignature(payload, webhook.Secret))
	}

	if deliveryLog != nil {
		deliveryLog.RequestHeaders = make(map[string]string, len(req.Header))
		for key, values := range req.Header {
			if len(values) > 0 {
				deliveryLog.RequestHeaders[key] = values[0]
			}
		}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if deliveryLog != nil {
		deliveryLog.StatusCode = resp.StatusCode
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}

	return nil
}

// sendWithLog is the entrypoint the retry worker uses to re-attempt delivery
// of an already-logged event.
func (m *Manager) sendWithLog(ctx context.Context, webhook *Webhook, event *Event, deliveryLog *DeliveryLog) error {
	return m.send(ctx, webhook, event, deliveryLog)
}

// VerifySignature checks a received X-Registry-Signature header against the
// shared secret, for consumers implementing their own webhook receiver.
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := generateSignature(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func generateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
