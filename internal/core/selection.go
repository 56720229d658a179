package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/types"
)

const (
	esmArchiveHost   = "esm.ubuntu.com"
	anboxArchiveURL  = "https://archive.anbox-cloud.io/stable/"
	defaultComponent = "main"
)

// EligibleEntitlements intersects the requested entitlement names
// with the entitled records of the contract. Requested names match
// either the contract type ("esm-infra") or the short repository path
// ("infra"). Entitlements that are absent, not entitled, or unmapped
// are reported as skipped; an empty surviving set is an error.
func EligibleEntitlements(contract types.ContractData, requested []string) ([]types.EntitlementRecord, []types.SkippedEntitlement, error) {
	var records []types.EntitlementRecord
	var skipped []types.SkippedEntitlement
	selected := map[string]struct{}{}

	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		record, ok := findEntitlement(contract, name)
		if !ok {
			skipped = append(skipped, types.SkippedEntitlement{Name: name, Reason: "not present in contract"})
			continue
		}
		if !record.Entitled {
			skipped = append(skipped, types.SkippedEntitlement{Name: name, Reason: "not entitled"})
			continue
		}
		if !KnownEntitlement(record.Type) {
			skipped = append(skipped, types.SkippedEntitlement{Name: name, Reason: "unknown entitlement type"})
			continue
		}
		// Short and long spellings resolve to the same record; a
		// repeated selection must not duplicate entry keys.
		if _, dup := selected[record.Type]; dup {
			skipped = append(skipped, types.SkippedEntitlement{Name: name, Reason: "duplicate selection"})
			continue
		}
		selected[record.Type] = struct{}{}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, skipped, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("empty entitlement selection: none of [%s] is entitled on this contract", strings.Join(requested, ", ")))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Type < records[j].Type
	})
	return records, skipped, nil
}

func findEntitlement(contract types.ContractData, name string) (types.EntitlementRecord, bool) {
	if record, ok := contract.Entitlement(name); ok {
		return record, true
	}
	// Short names: "infra" selects the record whose mapped repository
	// path is "infra".
	for _, record := range contract.Entitlements {
		if !KnownEntitlement(record.Type) {
			continue
		}
		path, err := PrimaryRepoPath(record.Type)
		if err == nil && path == name {
			return record, true
		}
	}
	return types.EntitlementRecord{}, false
}

// SuiteMatchesRelease reports whether a suite belongs to a release.
// The suite base (segment before the first dash) must equal the
// release exactly: "jammy" and "jammy-updates" match "jammy", while
// "noble" and "notjammy" do not.
func SuiteMatchesRelease(suite string, release string) bool {
	base, _, _ := strings.Cut(suite, "-")
	return base == release
}

// SelectEntries builds the candidate mirror-list entry set for a
// selection. It is the single eligibility algorithm shared by the
// mirror-list builder and the size estimator. Entries carry no
// credentials; ordering is deterministic (entitlement, suite,
// architecture, binaries before source).
func SelectEntries(contract types.ContractData, selection types.Selection) ([]types.MirrorListEntry, []types.SkippedEntitlement, error) {
	records, skipped, err := EligibleEntitlements(contract, selection.Entitlements)
	if err != nil {
		return nil, skipped, err
	}

	var entries []types.MirrorListEntry
	for _, record := range records {
		baseURL, err := entitlementBaseURL(record, selection)
		if err != nil {
			return nil, skipped, err
		}
		for _, suite := range entitlementSuites(record) {
			if !SuiteMatchesRelease(suite, selection.Release) {
				continue
			}
			for _, arch := range selection.Architectures {
				entries = append(entries, types.MirrorListEntry{
					Entitlement:  record.Type,
					BaseURL:      baseURL,
					Suite:        suite,
					Components:   []string{defaultComponent},
					Architecture: arch,
				})
			}
			if selection.IncludeSource {
				entries = append(entries, types.MirrorListEntry{
					Entitlement: record.Type,
					BaseURL:     baseURL,
					Suite:       suite,
					Components:  []string{defaultComponent},
					Source:      true,
				})
			}
		}
	}

	SortEntries(entries)
	return entries, skipped, nil
}

// SortEntries orders entries by the stable key used for idempotent
// diffing: entitlement, then suite, then architecture, binaries
// before source.
func SortEntries(entries []types.MirrorListEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Entitlement != b.Entitlement {
			return a.Entitlement < b.Entitlement
		}
		if a.Suite != b.Suite {
			return a.Suite < b.Suite
		}
		if a.Source != b.Source {
			return !a.Source
		}
		return a.Architecture < b.Architecture
	})
}

func entitlementSuites(record types.EntitlementRecord) []string {
	if record.Directive == nil {
		return nil
	}
	return record.Directive.Suites
}

// entitlementBaseURL resolves the upstream base URL for an entitled
// record, preferring the contract directive and falling back to the
// canonical archive layout. An optional mirror host override rewrites
// the URL to point at the local mirror.
func entitlementBaseURL(record types.EntitlementRecord, selection types.Selection) (string, error) {
	path, err := PrimaryRepoPath(record.Type)
	if err != nil {
		return "", err
	}

	base := ""
	if record.Directive != nil {
		base = strings.TrimSpace(record.Directive.AptURL)
	}
	if base == "" {
		if path == "anbox-cloud" {
			base = anboxArchiveURL
		} else {
			base = fmt.Sprintf("https://%s/%s/ubuntu/", esmArchiveHost, path)
		}
	}
	base = normalizeBaseURL(base, path)

	if selection.MirrorHost != "" {
		base = rewriteToMirrorHost(base, selection.MirrorHost, selection.MirrorPort)
	}
	return base, nil
}

// normalizeBaseURL enforces the trailing path layout the downstream
// mirroring tool expects: ".../ubuntu/" for ESM archives, a bare
// trailing slash for anbox-cloud.
func normalizeBaseURL(base string, path string) string {
	if path == "anbox-cloud" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		return base
	}
	if strings.HasSuffix(base, "/ubuntu/") {
		return base
	}
	if strings.HasSuffix(base, "/") {
		return base + "ubuntu/"
	}
	return base + "/ubuntu/"
}

func rewriteToMirrorHost(base string, host string, port int) string {
	_, rest, ok := strings.Cut(base, "://")
	if !ok {
		return base
	}
	_, tail, ok := strings.Cut(rest, "/")
	if !ok {
		tail = ""
	}
	if port > 0 && port != 80 {
		return fmt.Sprintf("http://%s:%d/%s", host, port, tail)
	}
	return fmt.Sprintf("http://%s/%s", host, tail)
}
