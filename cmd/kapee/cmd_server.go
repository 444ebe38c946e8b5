package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/internal/server"
	"github.com/shashiranjanraj/kapee/pkg/app"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/mail"
)

// kapee serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(context.Background()); err != nil {
				logger.Error("shutdown", "error", err)
			}
		}()

		return server.Start(ctx, ":"+config.AppPort(), a.Handler())
	},
}

// kapee route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(app.Options{Store: memstore.New(), Mailer: mail.LogMailer{}, Workers: 1})
		defer a.Close(context.Background()) //nolint:errcheck

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range a.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// kapee schedule:list: print the housekeeping jobs the server runs.
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List scheduled housekeeping jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(app.Options{Store: memstore.New(), Mailer: mail.LogMailer{}, Workers: 1})
		defer a.Close(context.Background()) //nolint:errcheck

		for _, line := range a.Jobs.List() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
