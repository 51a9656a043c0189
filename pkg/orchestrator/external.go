package orchestrator

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// externalOrchestrator delegates composition to a user-controlled HTTP
// endpoint, signing the request body with HMAC-SHA256 over the project's
// configured secret.
type externalOrchestrator struct {
	config *ExternalConfig
	client *http.Client
}

// NewExternal returns the Orchestrator that delegates to an external composer.
func NewExternal(config *ExternalConfig) Orchestrator {
	return &externalOrchestrator{
		config: config,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type externalServiceDTO struct {
	Name string `json:"name"`
	SDL  string `json:"sdl"`
	URL  string `json:"url,omitempty"`
}

type externalRequest struct {
	Schemas []externalServiceDTO `json:"schemas"`
	Type    string               `json:"type"`
}

type externalContractResponse struct {
	ID         string               `json:"id"`
	SDL        string               `json:"sdl,omitempty"`
	Supergraph string               `json:"supergraph,omitempty"`
	Errors     []externalErrorDTO   `json:"errors,omitempty"`
}

type externalErrorDTO struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

type externalResponse struct {
	SDL        string                      `json:"sdl,omitempty"`
	Supergraph string                      `json:"supergraph,omitempty"`
	Errors     []externalErrorDTO          `json:"errors,omitempty"`
	Tags       []string                    `json:"tags,omitempty"`
	Contracts  []externalContractResponse  `json:"contracts,omitempty"`
}

func (o *externalOrchestrator) ComposeAndValidate(ctx context.Context, schemas []schemadoc.Service, opts Options) (*Result, error) {
	reqBody := externalRequest{Type: "composite"}
	for _, s := range schemas {
		reqBody.Schemas = append(reqBody.Schemas, externalServiceDTO{Name: s.Name, SDL: s.SDL, URL: s.URL})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: encode external request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-hive-signature", sign(payload, o.config.Secret))

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: composer returned %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed externalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("orchestrator: decode external response: %w", err)
	}

	result := &Result{SDL: parsed.SDL, Supergraph: parsed.Supergraph, Tags: parsed.Tags}
	for _, e := range parsed.Errors {
		result.Errors = append(result.Errors, CompositionError{Message: e.Message, Source: CompositionErrorSource(e.Source)})
	}
	for _, c := range parsed.Contracts {
		cr := ContractResult{ID: c.ID, SDL: c.SDL, Supergraph: c.Supergraph}
		for _, e := range c.Errors {
			cr.Errors = append(cr.Errors, CompositionError{Message: e.Message, Source: CompositionErrorSource(e.Source)})
		}
		result.Contracts = append(result.Contracts, cr)
	}
	return result, nil
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks an inbound x-hive-signature header against the
// expected HMAC for payload, for services that themselves receive composer
// callbacks.
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(sign(payload, secret)), []byte(signature))
}
