package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/dailytodo/pkg/auth"
	"github.com/harrisonrobin/dailytodo/pkg/config"
	"github.com/harrisonrobin/dailytodo/pkg/google"
	"github.com/harrisonrobin/dailytodo/pkg/habitica"
	"github.com/harrisonrobin/dailytodo/pkg/index"
	"github.com/harrisonrobin/dailytodo/pkg/logging"
	"github.com/harrisonrobin/dailytodo/pkg/processor"
)

type options struct {
	accountsPath string
	logDir       string
	timeout      time.Duration
	baseURL      string
	calendar     string
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "dailytodo",
		Short: "Convert due Habitica Dailies into To-Dos",
		Long: `dailytodo checks every configured Habitica account once. For accounts that were
active today, each due and unfinished Daily whose notes start with the account's
prefix becomes a To-Do due in two days, and the Daily is checked off.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.Flags()
	flags.StringVarP(&opts.accountsPath, "config", "c", config.DefaultAccountsFile, "accounts file (JSON, or YAML by extension)")
	flags.StringVar(&opts.logDir, "log-dir", ".", "directory for per-account log files")
	flags.DurationVar(&opts.timeout, "timeout", habitica.DefaultTimeout, "timeout for each Habitica request")
	flags.StringVar(&opts.baseURL, "base-url", habitica.DefaultBaseURL, "Habitica API base URL")
	flags.StringVar(&opts.calendar, "calendar", "", "Google Calendar name to mirror created To-Dos to (overrides settings)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug output")

	root.AddCommand(newAuthCmd(), newSetCalendarCmd())
	return root
}

func runOnce(cmd *cobra.Command, opts *options) error {
	logging.SetupStd(opts.verbose)
	applySettings(cmd, opts)

	accounts, err := config.LoadAccounts(opts.accountsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &processor.Runner{
		NewService: func(a config.Account) processor.Service {
			return habitica.NewClient(
				habitica.Credentials{UserID: a.UserID, APIToken: a.APIToken},
				habitica.WithBaseURL(opts.baseURL),
				habitica.WithTimeout(opts.timeout),
			)
		},
		OpenLog: func(a config.Account) (logrus.FieldLogger, io.Closer, error) {
			return logging.OpenAccount(opts.logDir, a.Username)
		},
		Log: logrus.StandardLogger(),
	}

	if opts.calendar != "" {
		mirror, idx, err := openMirror(ctx, opts.calendar)
		if err != nil {
			logrus.Warnf("Calendar mirroring disabled: %v", err)
		} else {
			runner.Mirror = mirror
			defer func() {
				if err := idx.Save(); err != nil {
					logrus.Warnf("Failed to save event index: %v", err)
				}
			}()
		}
	}

	results := runner.Run(ctx, accounts)
	if processor.Failed(results) {
		logrus.Warnf("Finished with failed accounts, see the account logs in %s", opts.logDir)
	}
	return nil
}

// applySettings fills flags the user did not set from the saved settings.
func applySettings(cmd *cobra.Command, opts *options) {
	settings, err := config.Load()
	if err != nil {
		logrus.Warnf("Ignoring settings: %v", err)
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("calendar") && settings.Calendar != "" {
		opts.calendar = settings.Calendar
	}
	if !flags.Changed("base-url") && settings.BaseURL != "" {
		opts.baseURL = settings.BaseURL
	}
	if !flags.Changed("timeout") && settings.Timeout() > 0 {
		opts.timeout = settings.Timeout()
	}
	if !flags.Changed("log-dir") && settings.LogDir != "" {
		opts.logDir = settings.LogDir
	}
}

func openMirror(ctx context.Context, calendarName string) (*google.CalendarMirror, *index.EventIndex, error) {
	path, err := index.DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	idx, err := index.Open(path)
	if err != nil {
		return nil, nil, err
	}
	mirror, err := google.NewMirror(ctx, calendarName, idx)
	if err != nil {
		return nil, nil, err
	}
	return mirror, idx, nil
}

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar for To-Do mirroring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RemoveToken(); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, _ := auth.TokenPath()
			fmt.Printf("Authentication successful! Token saved to %s\n", path)
			return nil
		},
	}
}

func newSetCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the default Google Calendar to mirror To-Dos to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			settings.Calendar = args[0]
			if err := config.Save(settings); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Printf("Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}
