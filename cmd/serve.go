package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/handler"
	"github.com/keketsolithane/keketso/internal/logging"
	"github.com/keketsolithane/keketso/internal/repository"
	"github.com/keketsolithane/keketso/internal/router"
	"github.com/keketsolithane/keketso/internal/service"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/keketsolithane/keketso/internal/view"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the web server for the home, contact and quote pages and the
JSON submission API.

Examples:
  keketso serve
  keketso serve --addr 127.0.0.1:3000
  keketso serve --store sqlite`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, st, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return listen(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

// newRouter wires one guard and one set of services over st.
func newRouter(cfg *config.Config, st store.Store, log logrus.FieldLogger) http.Handler {
	guard := form.NewGuard()
	contactSvc := service.NewContactService(repository.NewMessageRepo(st), guard, log)
	quoteSvc := service.NewQuoteService(repository.NewQuoteRepo(st), guard, log)

	pageH := handler.NewPageHandler(siteView(cfg.Site), contactSvc, quoteSvc, log)
	apiH := handler.NewAPIHandler(contactSvc, quoteSvc)
	healthH := handler.NewHealthHandler(st)

	return router.New(log, pageH, apiH, healthH)
}

func listen(ctx context.Context, srv *http.Server, grace time.Duration, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("keketso server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func siteView(s config.SiteConfig) view.Site {
	return view.Site{
		Name:    s.Name,
		Email:   s.Email,
		Phone:   s.Phone,
		Address: s.Address,
		City:    s.City,
		Hours:   s.Hours,
		MapURL:  s.MapURL,
	}
}
