package adapters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

// AuthFileAdapter writes the apt authentication file. One machine
// line per upstream base URL, bearer login, mode 0600. The line
// format is fixed by the apt auth.conf contract.
type AuthFileAdapter struct {
	Path string
}

func NewAuthFileAdapter(path string) AuthFileAdapter {
	return AuthFileAdapter{Path: path}
}

func (a AuthFileAdapter) Write(entries []types.MirrorListEntry, credentials types.CredentialSet) error {
	type machine struct {
		url    string
		secret string
	}
	seen := map[string]machine{}
	for _, entry := range entries {
		secret, ok := credentials[entry.Entitlement]
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("missing resource credential for entitlement %s", entry.Entitlement))
		}
		// auth.conf machine entries omit the scheme.
		_, hostPath, found := strings.Cut(entry.BaseURL, "://")
		if !found {
			hostPath = entry.BaseURL
		}
		seen[hostPath] = machine{url: hostPath, secret: secret}
	}

	machines := make([]machine, 0, len(seen))
	for _, m := range seen {
		machines = append(machines, m)
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].url < machines[j].url })

	var b strings.Builder
	for _, m := range machines {
		fmt.Fprintf(&b, "machine %s login bearer password %s  # pop-mirror\n", m.url, m.secret)
	}
	return writeFileAtomic(a.Path, []byte(b.String()), 0600)
}

var _ ports.AuthFilePort = AuthFileAdapter{}
