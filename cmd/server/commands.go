package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/container"
	"github.com/garyjia/mark-console/internal/domain/form"
	httpapi "github.com/garyjia/mark-console/internal/interfaces/http"
	"github.com/garyjia/mark-console/pkg/database"
)

const version = "1.0.0"

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  c.runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP port.")
	cmd.Flags().String("mode", "", "gin mode: debug, release, test.")
	cobra.CheckErr(c.bindFlags(cmd, map[string]string{
		"server.port": "port",
		"server.mode": "mode",
	}, false))
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting mark console",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address()))

	ctr, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctr.Start(ctx); err != nil {
		return err
	}
	defer ctr.Close()

	services := ctr.Services()
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Mode:            cfg.Server.Mode,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		DefaultLanguage: cfg.I18n.DefaultLanguage,
	}, services.Console, services.Journal, logger.Sugar())

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.New(database.Config{
				Path:            cfg.Database.Path,
				MaxOpenConns:    cfg.Database.MaxOpenConns,
				MaxIdleConns:    cfg.Database.MaxIdleConns,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
				BusyTimeout:     cfg.Database.BusyTimeout,
			}, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewMigrator(db, logger).RunMigrations(container.MigrationSource(cfg.Database.MigrationsDir)); err != nil {
				return err
			}
			version, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", db.Path(), version)
			return nil
		},
	}
}

func (c *cli) actionsCommand() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Print the action catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cc := cfg.ToContainerConfig()
			bundle, err := container.ProvideCatalog(&cc.Catalog, logger)
			if err != nil {
				return err
			}
			labels, err := container.ProvideLabels(&cc.I18n)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.I18n.DefaultLanguage
			}
			label := labels.Lookup(lang)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tREQUIRED FIELDS")
			for _, def := range bundle.Catalog.Actions() {
				fields := "-"
				if len(def.RequiredFields) > 0 {
					fields = strings.Join(def.RequiredFields, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.ID, label(def.LabelKey), fields)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Label language.")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	var (
		lang     string
		actionID string
		markRef  string
		since    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the action journal to an xlsx workbook in the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := port.ActionRecordFilter{ActionID: actionID, MarkRef: markRef}
			if since != "" {
				t, err := time.Parse(form.DateLayout, since)
				if err != nil {
					return fmt.Errorf("invalid --since %q: %w", since, err)
				}
				filter.Since = t
			}

			cfg, logger, err := c.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if lang == "" {
				lang = cfg.I18n.DefaultLanguage
			}

			ctr, err := container.NewContainer(cfg.ToContainerConfig(), logger)
			if err != nil {
				return err
			}
			if err := ctr.Start(cmd.Context()); err != nil {
				return err
			}
			defer ctr.Close()

			path, err := ctr.Services().Journal.ExportToFile(cmd.Context(), filter, lang)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Label language.")
	cmd.Flags().StringVar(&actionID, "action", "", "Only this action id.")
	cmd.Flags().StringVar(&markRef, "mark", "", "Only this mark.")
	cmd.Flags().StringVar(&since, "since", "", "Only actions completed on or after this date (YYYY-MM-DD).")
	return cmd
}
