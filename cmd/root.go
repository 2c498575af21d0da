// Package cmd implements the classloader command line.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/classloader/app"
	"github.com/kilianp07/classloader/config"
	"github.com/kilianp07/classloader/core/module"
	"github.com/kilianp07/classloader/infra/logger"
)

// Execute runs the CLI against a catalog holding only the builtin modules.
func Execute() error { return NewRootCmd(module.NewCatalog()).Execute() }

// NewRootCmd builds the command tree. Programs embedding the CLI pass the
// catalog defining their own modules.
func NewRootCmd(cat *module.Catalog) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "classloader",
		Short:        "Resolve and build classes from registered modules",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")

	service := func() (*app.Service, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return app.New(cfg, cat)
	}
	root.AddCommand(
		newResolveCmd(service),
		newModulesCmd(service),
		newBuildCmd(service),
		newServeCmd(service),
	)
	return root
}

type serviceFunc func() (*app.Service, error)

func newServeCmd(service serviceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the loader service and expose its metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			svc, err := service()
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.New("main").Errorf("service close: %v", err)
				}
			}()
			return svc.Run(ctx)
		},
	}
}

func withService(service serviceFunc, fn func(*app.Service) error) error {
	svc, err := service()
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}
