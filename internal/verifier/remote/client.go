// Package remote calls a standalone verifier service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	contract "zkid/contracts/verifier"
	"zkid/internal/verifier"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/circuit"
	"zkid/pkg/platform/middleware/apikey"
)

const maxResponseSize = 64 * 1024

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the remote verifier client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
	Logger     *slog.Logger
}

// Client implements verifier.Verifier against POST {BaseURL}/verify.
//
// A 200 response carries the verdict. Transport failures, timeouts, 5xx
// responses, undecodable bodies and an open circuit abort the call.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// New creates a remote verifier client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuit.New("remote-verifier")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// VerifyProof implements verifier.Verifier.
func (c *Client) VerifyProof(ctx context.Context, verificationKey, proof []byte) (verifier.Outcome, error) {
	if err := c.breaker.Allow(); err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "remote verifier circuit open")
	}

	out, err := c.call(ctx, verificationKey, proof)
	if t := c.breaker.Record(err); t.Changed() {
		c.logger.WarnContext(ctx, "remote verifier circuit changed state",
			"breaker", c.breaker.Name(),
			"from", t.From.String(),
			"to", t.To.String(),
			"error", err,
		)
	}
	if err != nil {
		return verifier.Outcome{}, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, verificationKey, proof []byte) (verifier.Outcome, error) {
	body, err := json.Marshal(contract.VerifyRequest{VerificationKey: verificationKey, Proof: proof})
	if err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal verify request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verify request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apikey.Header, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeTimeout, "remote verifier timeout")
		}
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "remote verifier unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verify response")
	}
	if resp.StatusCode != http.StatusOK {
		return verifier.Outcome{}, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("remote verifier returned status %d", resp.StatusCode))
	}

	var decoded contract.VerifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode verify response")
	}

	// The remote id must agree with the local fingerprint, otherwise the
	// verdict belongs to different inputs.
	proofID := verifier.Fingerprint(verificationKey, proof)
	if remoteID, ok := verifier.ParseProofID(decoded.ProofID); !ok || remoteID != proofID {
		return verifier.Outcome{}, dErrors.New(dErrors.CodeInternal, "remote verifier returned a mismatched proof id")
	}

	if decoded.Accepted {
		return verifier.Accept(proofID), nil
	}
	return verifier.Reject(proofID, decoded.Reason), nil
}

// Health checks that the verifier service answers /health/live.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/live", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote verifier health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote verifier unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
