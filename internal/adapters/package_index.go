package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	debversion "github.com/knqyf263/go-deb-version"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/shared"
	"pop-mirror/internal/types"
)

const defaultIndexTimeout = 30 * time.Second

// PackageIndexAdapter fetches repository index files (Packages.gz /
// Sources.gz) and summarizes them without touching package payloads.
type PackageIndexAdapter struct {
	Timeout time.Duration
	client  *http.Client
}

func NewPackageIndexAdapter(timeoutSec int) *PackageIndexAdapter {
	timeout := defaultIndexTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return &PackageIndexAdapter{
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// IndexURL returns the repository index location for an entry.
func IndexURL(entry types.MirrorListEntry) string {
	component := "main"
	if len(entry.Components) > 0 {
		component = entry.Components[0]
	}
	base := strings.TrimRight(entry.BaseURL, "/")
	if entry.Source {
		return fmt.Sprintf("%s/dists/%s/%s/source/Sources.gz", base, entry.Suite, component)
	}
	return fmt.Sprintf("%s/dists/%s/%s/binary-%s/Packages.gz", base, entry.Suite, component, entry.Architecture)
}

func (a *PackageIndexAdapter) FetchIndex(ctx context.Context, entry types.MirrorListEntry, credential string) (ports.RepoIndexStats, error) {
	url := IndexURL(entry)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.RepoIndexStats{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("bad index request: " + url).
			WithCause(err)
	}
	req.SetBasicAuth("bearer", credential)
	req.Header.Set("User-Agent", "pop-mirror/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return ports.RepoIndexStats{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index fetch failed: " + url).
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ports.RepoIndexStats{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index fetch failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}

	reader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return ports.RepoIndexStats{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index not gzip encoded: " + url).
			WithCause(err)
	}
	defer reader.Close()

	stats, err := summarizeIndex(reader)
	if err != nil {
		return ports.RepoIndexStats{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index unparseable: " + url).
			WithCause(err)
	}
	return stats, nil
}

// summarizeIndex walks the control stanzas of a Packages/Sources
// index, summing sizes and counting stanzas. Duplicate package names
// are counted once as current and once per superseded version, using
// Debian version comparison to pick the newest.
func summarizeIndex(r io.Reader) (ports.RepoIndexStats, error) {
	stats := ports.RepoIndexStats{}
	latest := map[string]debversion.Version{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkg, ver string
	var size int64
	flush := func() {
		if pkg == "" && size == 0 {
			return
		}
		stats.Packages++
		stats.Bytes += size
		if pkg != "" && ver != "" {
			if parsed, err := debversion.NewVersion(ver); err == nil {
				if prev, ok := latest[pkg]; ok {
					stats.Superseded++
					if parsed.GreaterThan(prev) {
						latest[pkg] = parsed
					}
				} else {
					latest[pkg] = parsed
				}
			}
		}
		pkg, ver, size = "", "", 0
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		// Continuation lines and unknown fields are irrelevant here.
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Package":
			pkg = value
		case "Version":
			ver = value
		case "Size":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				size = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return ports.RepoIndexStats{}, err
	}
	flush()
	return stats, nil
}

var _ ports.RepoMetadataPort = (*PackageIndexAdapter)(nil)
