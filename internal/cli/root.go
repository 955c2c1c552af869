package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kndndrj/chhttp/core"
	"github.com/kndndrj/chhttp/core/transport"
	"github.com/kndndrj/chhttp/stdlog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	URL     string
	Retries int
	Timeout time.Duration
	Verbose bool
}

// NewRootCommand creates the root command of the chq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	var configFile string

	cmd := &cobra.Command{
		Use:           "chq",
		Short:         "chq - query ClickHouse over HTTP",
		Long:          "Run statements against a ClickHouse server through its HTTP interface.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, configFile); err != nil {
				return err
			}

			opts.URL = v.GetString("url")
			opts.Retries = v.GetInt("retries")
			opts.Timeout = v.GetDuration("timeout")
			opts.Verbose = v.GetBool("verbose")

			if opts.URL == "" {
				return errors.New("no server url: set --url or CHQ_URL")
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $HOME/.chq.yaml)")
	cmd.PersistentFlags().String("url", "http://localhost:8123", "server url, may embed credentials and {{ env }} templates")
	cmd.PersistentFlags().Int("retries", transport.DefaultPolicy().MaxRetries, "retries for rejected statements")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "deadline for a single command")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	for _, name := range []string{"url", "retries", "timeout", "verbose"} {
		_ = v.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}

	// Add subcommands
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

// loadConfig layers environment (CHQ_*, including a local .env) and an
// optional yaml file under the flags.
func loadConfig(v *viper.Viper, configFile string) error {
	// .env is optional and never overrides the real environment
	_ = godotenv.Load()

	v.SetEnvPrefix("CHQ")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("v.ReadInConfig: %w", err)
		}
		return nil
	}

	v.SetConfigName(".chq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	// Try to read config file (ignore if not found)
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("v.ReadInConfig: %w", err)
	}

	return nil
}

// client builds a client logging to the command's error stream.
func (o *RootOptions) client(cmd *cobra.Command) *core.Client {
	level := stdlog.LevelWarn
	if o.Verbose {
		level = stdlog.LevelDebug
	}

	return core.NewFromParams(
		&core.ConnectionParams{Name: "chq", URL: o.URL},
		core.WithLogger(stdlog.New(cmd.ErrOrStderr(), level)),
		core.WithRetryPolicy(transport.NewPolicy(transport.WithMaxRetries(o.Retries))),
	)
}

func (o *RootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), o.Timeout)
}
