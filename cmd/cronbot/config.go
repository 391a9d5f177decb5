package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/cronbot/internal/config"
	"github.com/flemzord/cronbot/pkg/app"
	"github.com/spf13/cobra"
)

var botTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without starting anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(runParams(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration OK")
			fmt.Fprintf(out, "  snapshot: POST %s every %s\n", cfg.SnapshotURL(), cfg.Schedule.SnapshotInterval)
			fmt.Fprintf(out, "  cleanup:  POST %s (checked every %s, quarterly)\n", cfg.CleanupURL(), cfg.Schedule.CleanupCheckInterval)
			fmt.Fprintf(out, "  admin chat: %s\n", cfg.AdminChatID)
			if cfg.HTTP.Addr != "" {
				fmt.Fprintf(out, "  http: %s\n", cfg.HTTP.Addr)
			}
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a .env file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			values, err := promptEnv()
			if err != nil {
				return err
			}
			if err := config.WriteDotEnv(path, values); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", ".env", "File to write")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

// promptEnv asks for the required settings and the common optional ones.
func promptEnv() (map[string]string, error) {
	var (
		token   string
		chatID  string
		baseURL = config.DefaultBaseURL
		secret  string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather, e.g. 123456:ABC-DEF").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if !botTokenPattern.MatchString(s) {
						return errors.New("expected <bot_id>:<hash>")
					}
					return nil
				}),
			huh.NewInput().
				Title("Administrator chat ID").
				Value(&chatID).
				Validate(func(s string) error {
					if _, err := strconv.ParseInt(s, 10, 64); err != nil {
						return errors.New("must be an integer chat id")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL of the service").
				Value(&baseURL),
			huh.NewInput().
				Title("Cron secret (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&secret),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	values := map[string]string{
		"BOT_TOKEN":     token,
		"ADMIN_CHAT_ID": chatID,
		"BASE_URL":      baseURL,
	}
	if secret != "" {
		values["CRON_SECRET"] = secret
	}
	return values, nil
}
