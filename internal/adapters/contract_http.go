package adapters

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/shared"
)

const defaultContractTimeout = 30 * time.Second

// ContractHTTPAdapter fetches the raw contract document from the
// air-gapped contract service. Exactly one request per call, no
// internal retry loop; retries belong to the caller.
type ContractHTTPAdapter struct {
	Endpoint string
	Timeout  time.Duration
	client   *http.Client
}

func NewContractHTTPAdapter(endpoint string, timeoutSec int) *ContractHTTPAdapter {
	timeout := defaultContractTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return &ContractHTTPAdapter{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *ContractHTTPAdapter) Fetch(ctx context.Context, token string) ([]byte, error) {
	if strings.TrimSpace(a.Endpoint) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("contract endpoint is empty")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("contract token is empty")
	}

	url := a.Endpoint + "/v1/contracts"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("contract fetch failed: bad request for " + url).
			WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pop-mirror/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("contract fetch failed: " + url).
			WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("contract fetch failed: reading response from " + url).
			WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("contract fetch failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	return body, nil
}

var _ ports.ContractClientPort = (*ContractHTTPAdapter)(nil)
