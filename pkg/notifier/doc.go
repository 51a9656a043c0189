// Package notifier dispatches registry lifecycle events to registered HTTP
// webhooks: schema checks that fail, versions that publish or delete, and
// breaking changes detected along the way. Delivery is asynchronous,
// HMAC-signed when a webhook has a secret, retried with exponential
// backoff, and rate-limited per webhook.
package notifier
