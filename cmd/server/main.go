package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/config"
	"github.com/garyjia/mark-console/pkg/utils"
)

type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
}

func main() {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "markconsole",
		Short:         "Marked goods console: action entry dialogs and action journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "Path to config file.")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Environment file loaded before the config.")
	root.PersistentFlags().String("db", "", "SQLite database path.")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error.")

	if err := c.bindFlags(root, map[string]string{
		"database.path": "db",
		"logger.level":  "log-level",
	}, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	root.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.actionsCommand(),
		c.exportCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bindFlags binds config keys to flags so a flag given on the command line
// wins over the file and environment.
func (c *cli) bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) error {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// bootstrap loads configuration and builds the logger every command needs
func (c *cli) bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadWith(c.v, c.cfgFile, c.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
