package notifier

import (
	"sync"
	"time"
)

// DeliveryStatus is the lifecycle state of one webhook delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusPending  DeliveryStatus = "pending"
	DeliveryStatusSuccess  DeliveryStatus = "success"
	DeliveryStatusFailed   DeliveryStatus = "failed"
	DeliveryStatusRetrying DeliveryStatus = "retrying"
)

// DeliveryLog records one attempt (and its retries) to deliver an event to a webhook.
type DeliveryLog struct {
	ID             string            `json:"id"`
	WebhookID      string            `json:"webhook_id"`
	EventID        string            `json:"event_id"`
	EventType      EventType         `json:"event_type"`
	URL            string            `json:"url"`
	Status         DeliveryStatus    `json:"status"`
	StatusCode     int               `json:"status_code,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Attempts       int               `json:"attempts"`
	NextRetryAt    *time.Time        `json:"next_retry_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Duration       time.Duration     `json:"duration,omitempty"`
	RequestHeaders map[string]string `json:"request_headers,omitempty"`
	ResponseBody   string            `json:"response_body,omitempty"`
}

// DeliveryLogStore is an in-memory, size-bounded store of delivery logs.
type DeliveryLogStore struct {
	mu      sync.RWMutex
	logs    map[string]*DeliveryLog
	maxLogs int
}

// NewDeliveryLogStore creates a store retaining at most maxLogs entries.
func NewDeliveryLogStore(maxLogs int) *DeliveryLogStore {
	if maxLogs <= 0 {
		maxLogs = 1000
	}
	return &DeliveryLogStore{
		logs:    make(map[string]*DeliveryLog),
		maxLogs: maxLogs,
	}
}

// Add records a new delivery log, evicting the oldest entries if the store is full.
func (s *DeliveryLogStore) Add(log *DeliveryLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.logs) >= s.maxLogs {
		s.evictOldestLocked()
	}
	s.logs[log.ID] = log
}

// Get retrieves a delivery log by id.
func (s *DeliveryLogStore) Get(id string) (*DeliveryLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, exists := s.logs[id]
	return log, exists
}

// GetByWebhook returns a webhook's delivery logs, most recent first.
func (s *DeliveryLogStore) GetByWebhook(webhookID string, limit int) []*DeliveryLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*DeliveryLog
	for _, log := range s.logs {
		if log.WebhookID == webhookID {
			result = append(result, log)
		}
	}

	for i := 0; i < len(result)-1; i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i].CreatedAt.Before(result[j].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// GetByEvent returns every delivery log recorded for one event.
func (s *DeliveryLogStore) GetByEvent(eventID string) []*DeliveryLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*DeliveryLog
	for _, log := range s.logs {
		if log.EventID == eventID {
			result = append(result, log)
		}
	}
	return result
}

// Update overwrites a delivery log in place.
func (s *DeliveryLogStore) Update(log *DeliveryLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.ID] = log
}

// GetPendingRetries returns delivery logs whose retry time has passed.
func (s *DeliveryLogStore) GetPendingRetries() []*DeliveryLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []*DeliveryLog
	for _, log := range s.logs {
		if log.Status == DeliveryStatusRetrying && log.NextRetryAt != nil && log.NextRetryAt.Before(now) {
			result = append(result, log)
		}
	}
	return result
}

// evictOldestLocked removes the oldest 10% of logs. Callers must hold s.mu.
func (s *DeliveryLogStore) evictOldestLocked() {
	logs := make([]*DeliveryLog, 0, len(s.logs))
	for _, log := range s.logs {
		logs = append(logs, log)
	}

	for i := 0; i < len(logs)-1; i++ {
		for j := i + 1; j < len(logs); j++ {
			if logs[i].CreatedAt.After(logs[j].CreatedAt) {
				logs[i], logs[j] = logs[j], logs[i]
			}
		}
	}

	evictCount := len(logs) / 10
	if evictCount == 0 {
		evictCount = 1
	}
	for i := 0; i < evictCount && i < len(logs); i++ {
		delete(s.logs, logs[i].ID)
	}
}

// GetStats summarizes delivery outcomes for a webhook.
func (s *DeliveryLogStore) GetStats(webhookID string) DeliveryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := DeliveryStats{WebhookID: webhookID}
	for _, log := range s.logs {
		if log.WebhookID != webhookID {
			continue
		}

		stats.Total++
		switch log.Status {
		case DeliveryStatusSuccess:
			stats.Successful++
		case DeliveryStatusFailed:
			stats.Failed++
		case DeliveryStatusRetrying:
			stats.Retrying++
		}

		if log.CompletedAt != nil {
			stats.TotalDuration += log.Duration
		}
	}

	if stats.Successful > 0 {
		stats.AverageDuration = stats.TotalDuration / time.Duration(stats.Successful)
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total)
	}
	return stats
}

// DeliveryStats summarizes delivery outcomes for one webhook.
type DeliveryStats struct {
	WebhookID       string        `json:"webhook_id"`
	Total           int           `json:"total"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	Retrying        int           `json:"retrying"`
	SuccessRate     float64       `json:"success_rate"`
	AverageDuration time.Duration `json:"average_duration"`
	TotalDuration   time.Duration `json:"total_duration"`
}
