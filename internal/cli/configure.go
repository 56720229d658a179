package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pop-mirror/internal/app"
	"pop-mirror/internal/types"
)

type configureOptions struct {
	Token         string
	Release       string
	Architectures []string
	Entitlements  []string
	IncludeSource bool
	MirrorHost    string
	MirrorPort    int
}

func newConfigureCommand() *cobra.Command {
	opts := configureOptions{}
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Resolve the contract and reconcile the mirror configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigure(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "Contract token")
	cmd.Flags().StringVar(&opts.Release, "release", "jammy", "Release codename")
	cmd.Flags().StringSliceVar(&opts.Architectures, "arch", []string{"amd64"}, "Architectures to mirror")
	cmd.Flags().StringSliceVar(&opts.Entitlements, "entitlements", []string{"infra", "apps"}, "Entitlements to mirror")
	cmd.Flags().BoolVar(&opts.IncludeSource, "include-source", false, "Include source packages")
	cmd.Flags().StringVar(&opts.MirrorHost, "mirror-host", "", "Local mirror host override")
	cmd.Flags().IntVar(&opts.MirrorPort, "mirror-port", 0, "Local mirror port override")

	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("release", cmd.Flags().Lookup("release"))
	_ = viper.BindPFlag("architectures", cmd.Flags().Lookup("arch"))
	_ = viper.BindPFlag("entitlements", cmd.Flags().Lookup("entitlements"))
	_ = viper.BindPFlag("include_source", cmd.Flags().Lookup("include-source"))
	_ = viper.BindPFlag("mirror_host", cmd.Flags().Lookup("mirror-host"))
	_ = viper.BindPFlag("mirror_port", cmd.Flags().Lookup("mirror-port"))

	return cmd
}

func runConfigure(ctx context.Context, cmd *cobra.Command, opts configureOptions) error {
	service := newAppService()
	result, err := service.Configure(ctx, app.ConfigureRequest{
		Token: resolveString(cmd, opts.Token, "token", "token"),
		Selection: types.Selection{
			Release:       resolveString(cmd, opts.Release, "release", "release"),
			Architectures: resolveStrings(cmd, opts.Architectures, "architectures", "arch"),
			Entitlements:  resolveStrings(cmd, opts.Entitlements, "entitlements", "entitlements"),
			IncludeSource: resolveBool(cmd, opts.IncludeSource, "include_source", "include-source"),
			MirrorHost:    resolveString(cmd, opts.MirrorHost, "mirror_host", "mirror-host"),
			MirrorPort:    resolveInt(cmd, opts.MirrorPort, "mirror_port", "mirror-port"),
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("reconciled: %d entries (%d added, %d removed, %d rotated, %d unchanged)\n",
		result.Entries, result.Added, result.Removed, result.Rotated, result.Unchanged)
	for _, skip := range result.Skipped {
		fmt.Printf("skipped: %s (%s)\n", skip.Name, skip.Reason)
	}
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	if viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	return values
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
