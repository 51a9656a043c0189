package notifier

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime/debug"
	"time"
)

// RetryConfig configures exponential backoff for webhook delivery retries.
type RetryConfig struct {
	MaxAttempts       int           `json:"max_attempts"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialDelay:      1 * time.Second,
		MaxDelay:          5 * time.Minute,
		BackoffMultiplier: 2.0,
	}
}

// RetryPolicy implements exponential backoff retry decisions.
type RetryPolicy struct {
	config RetryConfig
}

// NewRetryPolicy creates a retry policy, filling in zero fields with defaults.
func NewRetryPolicy(config RetryConfig) *RetryPolicy {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Minute
	}
	if config.BackoffMultiplier <= 1.0 {
		config.BackoffMultiplier = 2.0
	}
	return &RetryPolicy{config: config}
}

// ShouldRetry reports whether a delivery should be attempted again.
func (p *RetryPolicy) ShouldRetry(attempts int, err error) bool {
	if err == nil {
		return false
	}
	return attempts < p.config.MaxAttempts
}

// NextRetryDelay computes the backoff delay before the next attempt.
func (p *RetryPolicy) NextRetryDelay(attempts int) time.Duration {
	if attempts <= 0 {
		return p.config.InitialDelay
	}

	delay := float64(p.config.InitialDelay) * math.Pow(p.config.BackoffMultiplier, float64(attempts-1))
	if delay > float64(p.config.MaxDelay) {
		return p.config.MaxDelay
	}
	return time.Duration(delay)
}

// NextRetryTime computes the wall-clock time of the next retry.
func (p *RetryPolicy) NextRetryTime(attempts int) time.Time {
	return time.Now().Add(p.NextRetryDelay(attempts))
}

// RetryWorker periodically re-delivers webhook events whose last attempt failed.
type RetryWorker struct {
	manager       *Manager
	deliveryStore *DeliveryLogStore
	retryPolicy   *RetryPolicy
	stopCh        chan struct{}
	ticker        *time.Ticker
}

// NewRetryWorker builds a RetryWorker bound to one Manager and its delivery store.
func NewRetryWorker(manager *Manager, deliveryStore *DeliveryLogStore, retryPolicy *RetryPolicy) *RetryWorker {
	return &RetryWorker{
		manager:       manager,
		deliveryStore: deliveryStore,
		retryPolicy:   retryPolicy,
		stopCh:        make(chan struct{}),
	}
}

// Start begins polling for pending retries on checkInterval.
func (w *RetryWorker) Start(ctx context.Context, checkInterval time.Duration) {
	w.ticker = time.NewTicker(checkInterval)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[notifier] retry worker panic: %v\n%s", r, debug.Stack())
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-w.ticker.C:
				w.processRetries(ctx)
			}
		}
	}()
}

// Stop halts the retry loop.
func (w *RetryWorker) Stop() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
	close(w.stopCh)
}

func (w *RetryWorker) processRetries(ctx context.Context) {
	for _, log := range w.deliveryStore.GetPendingRetries() {
		webhook, err := w.manager.GetWebhook(log.WebhookID)
		if err != nil {
			w.failPermanently(log, fmt.Sprintf("webhook not found: %v", err))
			continue
		}
		if !webhook.Active {
			w.failPermanently(log, "webhook is inactive")
			continue
		}
		w.retryDelivery(ctx, webhook, log)
	}
}

func (w *RetryWorker) failPermanently(log *DeliveryLog, reason string) {
	log.Status = DeliveryStatusFailed
	log.ErrorMessage = reason
	now := time.Now()
	log.CompletedAt = &now
	w.deliveryStore.Update(log)
}

func (w *RetryWorker) retryDelivery(ctx context.Context, webhook *Webhook, deliveryLog *DeliveryLog) {
	deliveryLog.Attempts++

	event := &Event{
		ID:        deliveryLog.EventID,
		Type:      deliveryLog.EventType,
		Timestamp: deliveryLog.CreatedAt,
		Data:      make(map[string]interface{}),
	}

	start := time.Now()
	err := w.manager.sendWithLog(ctx, webhook, event, deliveryLog)
	deliveryLog.Duration = time.Since(start)

	if err != nil {
		if w.retryPolicy.ShouldRetry(deliveryLog.Attempts, err) {
			deliveryLog.Status = DeliveryStatusRetrying
			nextRetry := w.retryPolicy.NextRetryTime(deliveryLog.Attempts)
			deliveryLog.NextRetryAt = &nextRetry
			deliveryLog.ErrorMessage = err.Error()
		} else {
			deliveryLog.Status = DeliveryStatusFailed
			deliveryLog.ErrorMessage = fmt.Sprintf("max retries exceeded: %v", err)
			now := time.Now()
			deliveryLog.CompletedAt = &now
		}
	} else {
		deliveryLog.Status = DeliveryStatusSuccess
		deliveryLog.ErrorMessage = ""
		now := time.Now()
		deliveryLog.CompletedAt = &now
	}

	w.deliveryStore.Update(deliveryLog)
}
