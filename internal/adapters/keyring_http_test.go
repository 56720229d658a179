package adapters

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp/armor"
)

func armoredKey(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, "PGP PUBLIC KEY BLOCK", nil)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestKeyringMaterialize(t *testing.T) {
	payload := []byte{0x99, 0x01, 0x0d, 0x04}
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RequestURI())
		_, _ = w.Write(armoredKey(t, payload))
	}))
	defer server.Close()

	dir := t.TempDir()
	adapter := NewKeyringHTTPAdapter(dir, server.URL, 5)

	keys := map[string]string{"esm-infra": "56F7650A24C9E9ECF87C4D8D4067E40313CB4B13"}
	require.NoError(t, adapter.Materialize(context.Background(), keys))

	require.Len(t, requests, 1)
	assert.Equal(t, "/pks/lookup?op=get&search=0x56F7650A24C9E9ECF87C4D8D4067E40313CB4B13", requests[0])

	// Dearmored to raw bytes on disk.
	data, err := os.ReadFile(filepath.Join(dir, "ubuntu-esm-infra.gpg"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.True(t, adapter.Present("esm-infra"))

	// Existing files are not re-fetched.
	require.NoError(t, adapter.Materialize(context.Background(), keys))
	assert.Len(t, requests, 1)
}

func TestKeyringMaterializeBinaryPassthrough(t *testing.T) {
	payload := []byte{0x99, 0x01, 0x0d}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	adapter := NewKeyringHTTPAdapter(dir, server.URL, 5)
	require.NoError(t, adapter.Materialize(context.Background(), map[string]string{"esm-apps": "ABCD"}))

	data, err := os.ReadFile(filepath.Join(dir, "ubuntu-esm-apps.gpg"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestKeyringMaterializeFetchFailureIsSkipped(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dir := t.TempDir()
	adapter := NewKeyringHTTPAdapter(dir, server.URL, 5)
	require.NoError(t, adapter.Materialize(context.Background(), map[string]string{"esm-infra": "ABCD"}))
	assert.False(t, adapter.Present("esm-infra"))
}

func TestKeyringMaterializeSkipsEmptyKey(t *testing.T) {
	adapter := NewKeyringHTTPAdapter(t.TempDir(), "http://127.0.0.1:1", 1)
	require.NoError(t, adapter.Materialize(context.Background(), map[string]string{"esm-infra": " "}))
	assert.False(t, adapter.Present("esm-infra"))
}

func TestKeyringPrune(t *testing.T) {
	dir := t.TempDir()
	adapter := NewKeyringHTTPAdapter(dir, "", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ubuntu-esm-apps.gpg"), []byte{0x01}, 0644))

	require.NoError(t, adapter.Prune([]string{"esm-apps", "never-existed"}))
	assert.False(t, adapter.Present("esm-apps"))
}

func TestDearmor(t *testing.T) {
	payload := []byte("raw key bytes")
	out, err := dearmor(armoredKey(t, payload))
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	out, err = dearmor(payload)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = dearmor([]byte("-----BEGIN PGP PUBLIC KEY BLOCK-----\ngarbage"))
	require.Error(t, err)
}
