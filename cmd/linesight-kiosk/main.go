// Command linesight-kiosk is a terminal client for the linesight dashboard
// API, meant for factory-floor kiosk stations. It keeps the session in a
// local credentials file and exercises the same session lifecycle the
// browser dashboard uses: login, validation on start, inactivity timeout,
// and permission-gated auto-refresh.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/linesight-io/linesight"
	"github.com/linesight-io/linesight/credstore"
)

type kioskConfig struct {
	BaseURL          string `yaml:"base_url"`
	CredentialsFile  string `yaml:"credentials_file"`
	StationID        string `yaml:"station_id"`
	InactivityWindow string `yaml:"inactivity_window"`
	RefreshInterval  string `yaml:"refresh_interval"`
}

func loadConfig(path string) (*kioskConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg kioskConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("config: base_url is required")
	}
	if cfg.CredentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.CredentialsFile = filepath.Join(home, ".linesight", "session.json")
	}
	return &cfg, nil
}

// consoleNavigator maps the SDK's navigation signals onto terminal output.
type consoleNavigator struct{}

func (consoleNavigator) NavigateToLogin(reason linesight.LogoutReason) {
	switch reason {
	case linesight.LogoutReasonInactivity:
		fmt.Println("session timed out after inactivity; run 'linesight-kiosk login'")
	case linesight.LogoutReasonUnauthorized:
		fmt.Println("session is no longer valid; run 'linesight-kiosk login'")
	default:
		fmt.Println("logged out")
	}
}

func (consoleNavigator) NavigateHome() {}

func buildClient(cfg *kioskConfig) (*linesight.Client, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.CredentialsFile), 0o700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}
	store, err := credstore.NewFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	sdkCfg := linesight.DefaultConfig()
	sdkCfg.API.BaseURL = cfg.BaseURL
	if cfg.InactivityWindow != "" {
		d, err := time.ParseDuration(cfg.InactivityWindow)
		if err != nil {
			return nil, fmt.Errorf("config: invalid inactivity_window: %w", err)
		}
		sdkCfg.Session.InactivityWindow = d
	}
	if cfg.RefreshInterval != "" {
		d, err := time.ParseDuration(cfg.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("config: invalid refresh_interval: %w", err)
		}
		sdkCfg.AutoRefresh.Interval = d
	}

	return linesight.New().
		WithConfig(sdkCfg).
		WithCredentialStore(store).
		WithNavigator(consoleNavigator{}).
		Build()
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "linesight-kiosk",
		Short:         "Factory kiosk client for the linesight dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "kiosk.yaml", "path to the kiosk config file")

	root.AddCommand(
		newLoginCmd(&configPath),
		newStatusCmd(&configPath),
		newWatchCmd(&configPath),
		newLogoutCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLoginCmd(configPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			client, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if password == "" {
				fmt.Print("password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			ctx := stationContext(cmd.Context(), cfg)
			result, err := client.Login(ctx, args[0], password)
			if err != nil {
				return err
			}

			name := args[0]
			if result.User != nil && result.User.Name != "" {
				name = result.User.Name
			}
			fmt.Printf("logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the stored session is still valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			client, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := stationContext(cmd.Context(), cfg)
			user, err := client.Validate(ctx)
			if errors.Is(err, linesight.ErrNoSession) || errors.Is(err, linesight.ErrSessionExpired) {
				fmt.Println("not logged in")
				return nil
			}
			if err != nil {
				return fmt.Errorf("could not reach the server (session kept): %w", err)
			}

			fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
			info := client.SessionInfo()
			if info.TokenExpiryOK {
				fmt.Printf("token expires at %s\n", info.TokenExpiry.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll line KPIs on the configured refresh interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			client, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(stationContext(cmd.Context(), cfg), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := client.EnsureSession(ctx); err != nil {
				return err
			}

			printSnapshot := func(ctx context.Context) error {
				snap, err := client.ProductionSnapshot(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("\n%s — %d lines\n", snap.GeneratedAt.Local().Format(time.Kitchen), len(snap.Lines))
				for _, line := range snap.Lines {
					fmt.Printf("  %-10s target/h %4d  actual/h %4d  eff %5.1f%%  defects %3d\n",
						line.Line, line.TargetPerHour, line.ActualPerHour, line.EfficiencyPct, line.DefectCount)
				}
				return nil
			}

			// First paint immediately; the poller takes over from there.
			if err := printSnapshot(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "fetch failed:", err)
			}

			poller := client.NewAutoRefresh(printSnapshot)
			poller.OnError(func(err error) {
				fmt.Fprintln(os.Stderr, "refresh failed:", err)
			})
			if err := poller.Start(ctx); err != nil {
				if errors.Is(err, linesight.ErrPermissionDenied) {
					return errors.New("this account is not allowed to auto-refresh")
				}
				return err
			}
			defer poller.Stop()

			<-ctx.Done()
			fmt.Println("\nstopping")
			return nil
		},
	}
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			client, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			return client.Logout(stationContext(cmd.Context(), cfg))
		},
	}
}

func stationContext(ctx context.Context, cfg *kioskConfig) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.StationID != "" {
		ctx = linesight.WithStationID(ctx, cfg.StationID)
	}
	return ctx
}
