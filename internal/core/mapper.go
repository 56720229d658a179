package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// repoPaths is the closed mapping from contract entitlement types to
// upstream repository path segments. The API names ESM channels
// "esm-infra" / "esm-apps" while the repository tree uses the bare
// segment, and anbox-cloud lives on its own archive host.
var repoPaths = map[string][]string{
	"esm-infra":    {"infra"},
	"esm-apps":     {"apps"},
	"fips":         {"fips"},
	"fips-updates": {"fips-updates"},
	"fips-preview": {"fips-preview"},
	"cis":          {"cis"},
	"usg":          {"usg"},
	"ros":          {"ros"},
	"ros-updates":  {"ros-updates"},
	"realtime":     {"realtime"},
	"anbox-cloud":  {"anbox-cloud"},
}

// MapEntitlement returns the ordered repository path segments for an
// entitlement type. Unknown types fail rather than defaulting; the
// caller decides whether to skip or abort.
func MapEntitlement(entType string) ([]string, error) {
	paths, ok := repoPaths[entType]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unknown entitlement type: %s", entType))
	}
	out := make([]string, len(paths))
	copy(out, paths)
	return out, nil
}

// KnownEntitlement reports whether the mapper has a path for the
// type.
func KnownEntitlement(entType string) bool {
	_, ok := repoPaths[entType]
	return ok
}

// PrimaryRepoPath returns the first mapped path segment, the one used
// for URL construction and short-name selection matching.
func PrimaryRepoPath(entType string) (string, error) {
	paths, err := MapEntitlement(entType)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}
