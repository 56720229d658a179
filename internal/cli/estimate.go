package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pop-mirror/internal/app"
	"pop-mirror/internal/shared"
	"pop-mirror/internal/types"
)

type estimateOptions struct {
	Token         string
	Release       string
	Architectures []string
	Entitlements  []string
	IncludeSource bool
	Workers       int
}

func newEstimateCommand() *cobra.Command {
	opts := estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate mirror size from repository index metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "Contract token")
	cmd.Flags().StringVar(&opts.Release, "release", "jammy", "Release codename")
	cmd.Flags().StringSliceVar(&opts.Architectures, "arch", []string{"amd64"}, "Architectures to estimate")
	cmd.Flags().StringSliceVar(&opts.Entitlements, "entitlements", []string{"infra", "apps"}, "Entitlements to estimate")
	cmd.Flags().BoolVar(&opts.IncludeSource, "include-source", false, "Include source packages")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Concurrent index fetches")

	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("release", cmd.Flags().Lookup("release"))
	_ = viper.BindPFlag("architectures", cmd.Flags().Lookup("arch"))
	_ = viper.BindPFlag("entitlements", cmd.Flags().Lookup("entitlements"))
	_ = viper.BindPFlag("include_source", cmd.Flags().Lookup("include-source"))
	_ = viper.BindPFlag("estimate_workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runEstimate(ctx context.Context, cmd *cobra.Command, opts estimateOptions) error {
	service := newAppService()
	result, err := service.Estimate(ctx, app.EstimateRequest{
		Token: resolveString(cmd, opts.Token, "token", "token"),
		Selection: types.Selection{
			Release:       resolveString(cmd, opts.Release, "release", "release"),
			Architectures: resolveStrings(cmd, opts.Architectures, "architectures", "arch"),
			Entitlements:  resolveStrings(cmd, opts.Entitlements, "entitlements", "entitlements"),
			IncludeSource: resolveBool(cmd, opts.IncludeSource, "include_source", "include-source"),
		},
	})
	if err != nil {
		return err
	}

	estimate := result.Estimate
	fmt.Printf("estimated size: %s (%d packages)\n", shared.HumanBytes(estimate.TotalBytes), estimate.TotalPackages)
	if estimate.Incomplete {
		fmt.Println("estimate incomplete: one or more repository indexes could not be fetched")
	}
	for _, repo := range estimate.Repositories {
		status := shared.HumanBytes(repo.Bytes)
		if repo.Failed {
			status = "unavailable"
		}
		fmt.Printf("  %s %s %s: %s\n", repo.Key.Entitlement, repo.Key.Suite, archLabel(repo.Key), status)
	}
	for _, skip := range result.Skipped {
		fmt.Printf("skipped: %s (%s)\n", skip.Name, skip.Reason)
	}
	return nil
}

func archLabel(key types.EntryKey) string {
	if key.Source {
		return "source"
	}
	return key.Architecture
}
