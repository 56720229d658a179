package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/types"
)

var supportedReleases = map[string]struct{}{
	"trusty": {},
	"xenial": {},
	"bionic": {},
	"focal":  {},
	"jammy":  {},
	"noble":  {},
}

var supportedArchitectures = map[string]struct{}{
	"amd64":   {},
	"arm64":   {},
	"armhf":   {},
	"i386":    {},
	"ppc64el": {},
	"s390x":   {},
	"riscv64": {},
}

// ValidateSelection checks the immutable parameter bundle before any
// network or file activity.
func ValidateSelection(ctx context.Context, selection types.Selection) error {
	assert.NotEmpty(ctx, selection.Release, "release must be set")
	if _, ok := supportedReleases[selection.Release]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported release: %s", selection.Release))
	}
	if len(selection.Architectures) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one architecture is required")
	}
	for _, arch := range selection.Architectures {
		if _, ok := supportedArchitectures[arch]; !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unsupported architecture: %s", arch))
		}
	}
	if len(selection.Entitlements) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one entitlement is required")
	}
	return nil
}
