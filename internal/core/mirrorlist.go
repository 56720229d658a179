package core

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pop-mirror/internal/shared"
	"pop-mirror/internal/types"
)

// Build produces the ordered mirror-list entry set for a selection.
// Entries whose entitlement has no resource credential are skipped
// with a warning rather than failing the whole build; a selection
// that yields no entries at all is an error.
func Build(contract types.ContractData, credentials types.CredentialSet, selection types.Selection) ([]types.MirrorListEntry, []types.SkippedEntitlement, error) {
	candidates, skipped, err := SelectEntries(contract, selection)
	if err != nil {
		return nil, skipped, err
	}

	missing := map[string]struct{}{}
	var entries []types.MirrorListEntry
	for _, entry := range candidates {
		if _, ok := credentials[entry.Entitlement]; !ok {
			missing[entry.Entitlement] = struct{}{}
			continue
		}
		entries = append(entries, entry)
	}
	for _, entType := range sortedKeys(missing) {
		skipped = append(skipped, types.SkippedEntitlement{Name: entType, Reason: "missing resource credential"})
		log.Warn().Str("entitlement", entType).Msg("missing resource credential, entitlement excluded from mirror list")
	}

	if len(entries) == 0 {
		return nil, skipped, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("empty entitlement selection: no entry has a usable credential")
	}
	return entries, skipped, nil
}

// RenderDocument serializes entries into the mirror-list document.
// This is the single place where credentials enter the text form: the
// downstream mirroring tool requires them embedded in the URL, so the
// document is the one artifact that carries them. The output is
// byte-stable for identical logical state.
func RenderDocument(entries []types.MirrorListEntry, credentials types.CredentialSet) (string, error) {
	ordered := append([]types.MirrorListEntry(nil), entries...)
	SortEntries(ordered)

	var b strings.Builder
	b.WriteString(documentHeader(ordered))

	bases := map[string]struct{}{}
	for _, entry := range ordered {
		secret, ok := credentials[entry.Entitlement]
		if !ok {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("missing resource credential for entitlement %s", entry.Entitlement))
		}
		credURL := embedCredential(entry.BaseURL, secret)
		components := strings.Join(entry.Components, " ")
		if entry.Source {
			fmt.Fprintf(&b, "deb-src %s %s %s\n", credURL, entry.Suite, components)
		} else {
			fmt.Fprintf(&b, "deb [arch=%s] %s %s %s\n", entry.Architecture, credURL, entry.Suite, components)
		}
		bases[entry.BaseURL] = struct{}{}
	}

	// Trailing cleanup directives, one per upstream base, credential
	// free. Informational for the mirroring tool.
	b.WriteString("\n")
	for _, base := range sortedKeys(bases) {
		fmt.Fprintf(&b, "clean %s\n", base)
	}
	return b.String(), nil
}

// documentHeader emits the apt-mirror config block. Derived only from
// the entry set so identical state renders byte-identically.
func documentHeader(entries []types.MirrorListEntry) string {
	defaultArch := "amd64"
	for _, entry := range entries {
		if !entry.Source {
			defaultArch = entry.Architecture
			break
		}
	}
	return fmt.Sprintf(`############# config ##################
set base_path    /var/spool/apt-mirror
set mirror_path  $base_path/mirror
set skel_path    $base_path/skel
set var_path     $base_path/var
set defaultarch  %s
set run_postmirror 0
set nthreads     20
set _tilde 0
set auth_no_challenge 1
############# end config ##############

`, defaultArch)
}

// ParsedEntry is an entry recovered from a persisted document, with
// the credential that was embedded in its URL.
type ParsedEntry struct {
	Entry      types.MirrorListEntry
	Credential string
}

// ParseDocument reads a previously rendered document back into
// entries. Config and clean lines are skipped; an unparseable deb
// line aborts, because diffing against a half-understood previous
// state could produce a destructive plan.
func ParseDocument(document string) ([]ParsedEntry, error) {
	var out []ParsedEntry
	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "set ") || strings.HasPrefix(line, "clean ") {
			continue
		}
		source := false
		switch {
		case strings.HasPrefix(line, "deb-src "):
			source = true
		case strings.HasPrefix(line, "deb "):
		default:
			return nil, parseError(line, "unrecognized directive")
		}

		fields := strings.Fields(line)
		idx := 1
		arch := ""
		if !source {
			if len(fields) < 2 || !strings.HasPrefix(fields[1], "[arch=") {
				return nil, parseError(line, "missing [arch=...] option")
			}
			arch = strings.TrimSuffix(strings.TrimPrefix(fields[1], "[arch="), "]")
			idx = 2
		}
		if len(fields) < idx+3 {
			return nil, parseError(line, "missing suite or components")
		}
		rawURL := fields[idx]
		suite := fields[idx+1]
		components := fields[idx+2:]

		baseURL, credential, entType, err := splitCredentialURL(rawURL)
		if err != nil {
			return nil, err
		}
		out = append(out, ParsedEntry{
			Entry: types.MirrorListEntry{
				Entitlement:  entType,
				BaseURL:      baseURL,
				Suite:        suite,
				Components:   components,
				Architecture: arch,
				Source:       source,
			},
			Credential: credential,
		})
	}
	return out, nil
}

func parseError(line string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed mirror list line (%s): %s", reason, shared.RedactURL(line)))
}

// embedCredential inlines the bearer secret into the URL userinfo,
// the format the downstream mirroring tool consumes.
func embedCredential(baseURL string, secret string) string {
	scheme, rest, ok := strings.Cut(baseURL, "://")
	if !ok {
		return baseURL
	}
	return fmt.Sprintf("%s://bearer:%s@%s", scheme, secret, rest)
}

// splitCredentialURL reverses embedCredential and recovers the
// entitlement type from the repository path segment.
func splitCredentialURL(rawURL string) (baseURL string, credential string, entType string, err error) {
	parsed, perr := url.Parse(rawURL)
	if perr != nil {
		return "", "", "", parseError(rawURL, "invalid url")
	}
	if parsed.User != nil {
		credential, _ = parsed.User.Password()
		parsed.User = nil
	}
	baseURL = parsed.String()

	entType, ok := entitlementForURL(parsed.Host, parsed.Path)
	if !ok {
		return "", "", "", parseError(rawURL, "no entitlement maps to repository path")
	}
	return baseURL, credential, entType, nil
}

// entitlementForURL is the reverse of the mapper table: repository
// path segment back to entitlement type.
func entitlementForURL(host string, path string) (string, bool) {
	if strings.Contains(host, "anbox-cloud") {
		return "anbox-cloud", true
	}
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	// The anbox archive keeps its channel ("stable") as the first
	// path segment even behind a mirror-host rewrite.
	if segment == "stable" {
		return "anbox-cloud", true
	}
	for entType := range repoPaths {
		primary, err := PrimaryRepoPath(entType)
		if err == nil && primary == segment {
			return entType, true
		}
	}
	return "", false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
