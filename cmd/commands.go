package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/classloader/app"
	"github.com/kilianp07/classloader/pkg/export"
)

func newResolveCmd(service serviceFunc) *cobra.Command {
	var namespace string
	c := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a qualified class name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(service, func(svc *app.Service) error {
				var ns *string
				if cmd.Flags().Changed("namespace") {
					ns = &namespace
				}
				k, err := svc.Resolve(args[0], ns)
				if err != nil {
					return err
				}
				base := "-"
				if b := k.Base(); b != nil {
					base = b.Name()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tbase=%s\n", k.Name(), k.Type(), base)
				return nil
			})
		},
	}
	c.Flags().StringVarP(&namespace, "namespace", "n", "", "confine the lookup to one namespace")
	return c
}

func newModulesCmd(service serviceFunc) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "modules",
		Short: "List registered modules in search order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(service, func(svc *app.Service) error {
				if format != "table" {
					return export.Write(cmd.OutOrStdout(), format, export.Entries(svc.Entries()))
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, e := range svc.Entries() {
					tag := e.Tag
					if tag == "" {
						tag = "-"
					}
					fmt.Fprintf(w, "%s\t%s\n", tag, e.Ref)
				}
				return w.Flush()
			})
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or csv")
	return c
}

func newBuildCmd(service serviceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "build [object]",
		Short: "Build a configured object, or list them without argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(service, func(svc *app.Service) error {
				if len(args) == 0 {
					for _, n := range svc.Objects() {
						fmt.Fprintln(cmd.OutOrStdout(), n)
					}
					return nil
				}
				obj, err := svc.Build(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %T %+v\n", args[0], obj, obj)
				return nil
			})
		},
	}
}
