package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show entitlement and mirror configuration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	service := newAppService()
	snapshot, err := service.Status(ctx)
	if err != nil {
		return err
	}

	if snapshot.AccountID == "" {
		fmt.Println("no contract snapshot found; run configure first")
		return nil
	}
	fmt.Printf("account: %s (%s)\n", snapshot.AccountName, snapshot.AccountID)
	if !snapshot.EffectiveTo.IsZero() {
		fmt.Printf("contract valid until: %s\n", snapshot.EffectiveTo.Format(time.RFC3339))
	}
	if !snapshot.LastReconcile.IsZero() {
		fmt.Printf("last reconcile: %s\n", snapshot.LastReconcile.Format(time.RFC3339))
	}
	fmt.Printf("mirror entries: %d\n", snapshot.EntryCount)

	for _, ent := range snapshot.Entitlements {
		var marks []string
		if ent.Entitled {
			marks = append(marks, "entitled")
		}
		if ent.Selected {
			marks = append(marks, "selected")
		}
		if ent.HasCredential {
			marks = append(marks, "credential")
		}
		if ent.HasKeyring {
			marks = append(marks, "keyring")
		}
		if len(marks) == 0 {
			marks = append(marks, "inactive")
		}
		fmt.Printf("  %-16s %s\n", ent.Type, strings.Join(marks, ","))
	}
	return nil
}
