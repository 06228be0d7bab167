package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/internal/kernel"
	"github.com/shashiranjanraj/catalog/internal/server"
	"github.com/shashiranjanraj/catalog/pkg/app"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/schedule"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		return serve(port)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (defaults to APP_PORT)")
}

func serve(port string) error {
	a, err := app.Boot()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Migrate(models.All()...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewProductService(repositories.NewStore(a.DB), a.Cache, config.CacheTTL())
	k := kernel.NewHTTPKernel(svc, config.RateLimit())
	go housekeeping(k, svc).Start(ctx)

	if port == "" {
		port = config.AppPort()
	}
	return server.Start(ctx, k.Handler(), server.Options{
		Addr:            ":" + port,
		ShutdownTimeout: config.ShutdownTimeout(),
	})
}

// housekeeping registers the background tasks of a running server.
func housekeeping(k *kernel.HTTPKernel, svc *services.ProductService) *schedule.Scheduler {
	s := schedule.New()
	s.Every(k.Limiter.Window()).Name("ratelimit:sweep").Run(func(context.Context) {
		if n := k.Limiter.Sweep(time.Now()); n > 0 {
			logger.Debug("rate limiter swept", "clients", n)
		}
	})
	s.Every(30 * time.Second).Name("database:ping").WithoutOverlapping().Run(func(ctx context.Context) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := svc.Ping(pingCtx); err != nil {
			logger.Warn("database unreachable", "error", err)
		}
	})
	return s
}

// catalog route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes only need the controllers wired, not a live store.
		svc := services.NewProductService(repositories.NewStore(nil), nil, 0)
		k := kernel.NewHTTPKernel(svc, config.RateLimit())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Router.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
