package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/openpgp/armor"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/shared"
)

const defaultKeyserver = "https://keyserver.ubuntu.com"
const defaultKeyFetchTimeout = 30 * time.Second

// KeyringHTTPAdapter fetches signing keys from a keyserver and
// materializes them as binary keyring files, one per entitlement
// type. Armored responses are dearmored in-process.
type KeyringHTTPAdapter struct {
	Dir       string
	Keyserver string
	Timeout   time.Duration
	client    *http.Client
}

func NewKeyringHTTPAdapter(dir string, keyserver string, timeoutSec int) *KeyringHTTPAdapter {
	if strings.TrimSpace(keyserver) == "" {
		keyserver = defaultKeyserver
	}
	timeout := defaultKeyFetchTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return &KeyringHTTPAdapter{
		Dir:       dir,
		Keyserver: strings.TrimRight(keyserver, "/"),
		Timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
	}
}

// Materialize ensures a keyring file exists for every entitlement in
// keys. Existing files are left alone, so rotation-only runs never
// re-fetch. A fetch failure for one key is a warning, not a failure
// of the whole run.
func (a *KeyringHTTPAdapter) Materialize(ctx context.Context, keys map[string]string) error {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create keyring directory " + a.Dir).
			WithCause(err)
	}

	ordered := make([]string, 0, len(keys))
	for entType := range keys {
		ordered = append(ordered, entType)
	}
	sort.Strings(ordered)

	for _, entType := range ordered {
		keyID := strings.TrimSpace(keys[entType])
		if keyID == "" {
			continue
		}
		path := a.keyPath(entType)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		material, err := a.fetchKey(ctx, keyID)
		if err != nil {
			log.Ctx(ctx).Warn().
				Str("entitlement", entType).
				Err(err).
				Msg("failed to fetch signing key, keyring entry skipped")
			continue
		}
		if err := writeFileAtomic(path, material, 0644); err != nil {
			return err
		}
		log.Ctx(ctx).Debug().Str("entitlement", entType).Str("path", path).Msg("keyring material written")
	}
	return nil
}

// Prune deletes keyring files for entitlements that no longer have
// mirror entries.
func (a *KeyringHTTPAdapter) Prune(entitlements []string) error {
	for _, entType := range entitlements {
		path := a.keyPath(entType)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove keyring file " + path).
				WithCause(err)
		}
	}
	return nil
}

func (a *KeyringHTTPAdapter) Present(entitlement string) bool {
	_, err := os.Stat(a.keyPath(entitlement))
	return err == nil
}

func (a *KeyringHTTPAdapter) keyPath(entType string) string {
	return filepath.Join(a.Dir, fmt.Sprintf("ubuntu-%s.gpg", entType))
}

func (a *KeyringHTTPAdapter) fetchKey(ctx context.Context, keyID string) ([]byte, error) {
	url := fmt.Sprintf("%s/pks/lookup?op=get&search=0x%s", a.Keyserver, keyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, shared.HTTPStatusError(resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return dearmor(body)
}

// dearmor converts an ASCII-armored key block into binary keyring
// bytes. Already-binary input passes through unchanged.
func dearmor(material []byte) ([]byte, error) {
	if !bytes.Contains(material, []byte("-----BEGIN PGP")) {
		return material, nil
	}
	block, err := armor.Decode(bytes.NewReader(material))
	if err != nil {
		return nil, fmt.Errorf("invalid armored key material: %w", err)
	}
	return io.ReadAll(block.Body)
}

var _ ports.KeyringPort = (*KeyringHTTPAdapter)(nil)
