package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pop-mirror/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "POP_MIRROR"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "pop-mirror",
		Short:   "Air-gapped entitled repository mirror provisioning",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().String("dir", "/srv/pop", "Base directory for the installation")
	cmd.PersistentFlags().String("contract-endpoint", "http://localhost:8484", "Contract service endpoint")
	cmd.PersistentFlags().String("keyserver", "", "Keyserver base URL (default: keyserver.ubuntu.com)")
	cmd.PersistentFlags().Int("timeout", 30, "External call timeout in seconds")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("dir", cmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("contract_endpoint", cmd.PersistentFlags().Lookup("contract-endpoint"))
	_ = viper.BindPFlag("keyserver", cmd.PersistentFlags().Lookup("keyserver"))
	_ = viper.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))

	cmd.AddCommand(newConfigureCommand())
	cmd.AddCommand(newEstimateCommand())
	cmd.AddCommand(newStatusCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("pop-mirror")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/pop-mirror")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func newAppService() app.Service {
	layout := app.NewLayout(viper.GetString("dir"))
	return app.NewService(layout, app.Options{
		ContractEndpoint: viper.GetString("contract_endpoint"),
		Keyserver:        viper.GetString("keyserver"),
		TimeoutSec:       viper.GetInt("timeout"),
		EstimateWorkers:  viper.GetInt("estimate_workers"),
	})
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	message := errorMessage(err)
	switch code {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodeFailedPrecondition:
		if strings.HasPrefix(message, "credential store corrupt") {
			return 5
		}
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal:
		if strings.HasPrefix(message, "contract fetch failed") {
			return 6
		}
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
