package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/cronbot/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts app.Run to the service manager's Start/Stop callbacks.
type program struct {
	params app.RunParams
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(service.Service) error {
	// Validate synchronously so the service manager sees a failed start.
	if _, err := app.LoadConfig(p.params); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		err := app.Run(ctx, p.params)
		if err != nil {
			slog.Error("cronbot stopped with error", "error", err)
		}
		p.done <- err
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

func newService(cmd *cobra.Command) (service.Service, error) {
	params := runParams(cmd)

	args := []string{"service", "run"}
	if params.ConfigPath != "" {
		args = append(args, "--config", params.ConfigPath)
	}
	for _, f := range params.EnvFiles {
		args = append(args, "--env-file", f)
	}

	return service.New(&program{params: params}, &service.Config{
		Name:        "cronbot",
		DisplayName: "cronbot",
		Description: "Triggers snapshot and cleanup jobs and reports them on Telegram",
		Arguments:   args,
	})
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage cronbot as an OS service",
	}

	action := func(use, short string, fn func(service.Service) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := fn(svc); err != nil {
					return fmt.Errorf("service %s: %w", use, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", use)
				return nil
			},
		}
	}

	cmd.AddCommand(
		action("install", "Install cronbot as a system service", service.Service.Install),
		action("uninstall", "Remove the system service", service.Service.Uninstall),
		&cobra.Command{
			Use:   "run",
			Short: "Run under the service manager",
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := svc.Run(); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			},
		},
	)
	return cmd
}
