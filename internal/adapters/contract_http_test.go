package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractFetch(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"token": {}}`))
	}))
	defer server.Close()

	adapter := NewContractHTTPAdapter(server.URL, 5)
	body, err := adapter.Fetch(context.Background(), "C1token")
	require.NoError(t, err)
	assert.Equal(t, `{"token": {}}`, string(body))
	assert.Equal(t, "Bearer C1token", gotAuth)
	assert.Equal(t, "/v1/contracts", gotPath)
}

func TestContractFetchNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewContractHTTPAdapter(server.URL, 5)
	_, err := adapter.Fetch(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "contract fetch failed")
}

func TestContractFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	adapter := NewContractHTTPAdapter(server.URL, 1)
	_, err := adapter.Fetch(context.Background(), "C1token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract fetch failed")
}

func TestContractFetchEmptyToken(t *testing.T) {
	adapter := NewContractHTTPAdapter("http://localhost:8484", 5)
	_, err := adapter.Fetch(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestContractFetchEmptyEndpoint(t *testing.T) {
	adapter := NewContractHTTPAdapter("", 5)
	_, err := adapter.Fetch(context.Background(), "C1token")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
