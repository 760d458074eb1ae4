package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/internal/config"
	"github.com/tmcc-dev/designform/internal/server"
	"github.com/tmcc-dev/designform/pkg/auth"
	"github.com/tmcc-dev/designform/pkg/catalogue"
	"github.com/tmcc-dev/designform/pkg/form"
	"github.com/tmcc-dev/designform/pkg/render"
)

func (a *app) serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the submission API and form page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "designform.yaml", "configuration file")
	return cmd
}

func (a *app) serve(ctx context.Context, cfg *config.Config) error {
	selector, err := render.NewManifestSelector(render.DefaultManifest())
	if err != nil {
		return err
	}
	theme, err := render.SelectTheme(selector, cfg.Theme.Name, cfg.Theme.Variant)
	if err != nil {
		return err
	}

	roles := auth.NewClient(
		auth.WithAPIBase(cfg.Discord.APIBase),
		auth.WithTimeout(cfg.Timeout()),
		auth.WithLogger(a.logger.Named("auth")),
	)
	options := []server.Option{
		server.WithLogger(a.logger),
		server.WithAuthorizer(auth.Gate{
			Roles:          roles,
			GuildID:        cfg.Discord.GuildID,
			RequiredRoleID: cfg.Discord.ArchiverRoleID,
		}),
		server.WithSink(form.LogSink{Logger: a.logger.Named("submissions")}),
		server.WithTheme(theme),
		server.WithTemplateDir(cfg.Theme.Templates),
		server.WithRequestTimeout(cfg.Timeout()),
	}
	if cfg.Catalogue.Path != "" {
		cat, err := catalogue.Open(cfg.Catalogue.Path, catalogue.WithLogger(a.logger.Named("catalogue")))
		if err != nil {
			return err
		}
		options = append(options, server.WithCatalogue(cat), server.WithWatch(cfg.Catalogue.Watch))
	}

	srv, err := server.New(options...)
	if err != nil {
		return err
	}
	a.logger.Info("starting server",
		zap.String("listen", cfg.Listen),
		zap.String("theme", theme.Name),
		zap.String("variant", theme.Variant),
	)
	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
