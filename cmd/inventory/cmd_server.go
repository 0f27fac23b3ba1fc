package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/internal/kernel"
	"github.com/shashiranjanraj/inventory/internal/server"
	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/migration"
)

// inventory serve: migrate, then start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Run pending migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db)

		flush := bootLogger()
		defer flush()

		if err := migration.New(db, cmd.OutOrStdout()).Run(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := cache.Open(ctx, cache.Options{
			Driver:        config.CacheDriver(),
			RedisAddr:     config.RedisAddr(),
			RedisPassword: config.RedisPassword(),
		})
		if err != nil {
			logger.Warn("cache unavailable, reading through to the database", "error", err)
		}
		defer cache.Close(store)

		k, err := kernel.NewHTTPKernel(kernel.Options{
			DB:            db,
			Cache:         store,
			CacheTTL:      config.CacheTTL(),
			Tokens:        auth.NewTokens(config.JWTSecret(), config.TokenTTL()),
			AdminUsername: config.AdminUsername(),
			AdminPassword: config.AdminPassword(),
			RateLimit:     config.RateLimit(),
			TrustProxy:    config.TrustProxy(),
		})
		if err != nil {
			return err
		}

		return server.Start(ctx, ":"+config.AppPort(), k.Handler())
	},
}

// inventory route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range kernel.RouteTable() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
