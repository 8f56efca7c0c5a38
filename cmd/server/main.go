package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"ohpshaw-server/internal/config"
	"ohpshaw-server/internal/mux"
	"ohpshaw-server/pkg/history"
	"ohpshaw-server/pkg/room"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var players = flag.Int("players", 0, "start a fresh game with this many players (overrides the configuration)")
var recoverFile = flag.String("recover", "", "resume the game saved in this log file")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()
	dealer, err := newDealer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not start the dealer")
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logrus.WithError(err).Fatal("could not listen")
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, dealer))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	go func() {
		logrus.WithField("addr", ln.Addr().String()).Info("listening")
		if err := dealer.ServeTCP(ln); err != nil {
			logrus.WithError(err).Error("stopped accepting connections")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = dealer.Run(ctx)
	_ = ln.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("game aborted")
	}

	logrus.Info("shut down")
}

func newDealer(cfg config.Config) (*room.Dealer, error) {
	opts := room.Options{
		TurnTimeout:      cfg.TurnTimeout,
		AutoPlayLastCard: cfg.AutoPlayLastCard,
		LogDir:           cfg.LogDir,
	}

	if *recoverFile != "" {
		store := history.OpenFileStore(*recoverFile)
		game, err := store.Load()
		if err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"file":        *recoverFile,
			"players":     game.Names(),
			"handsPlayed": game.HandsPlayed(),
		}).Info("recovering game")

		return room.NewRecoveryDealer(logrus.StandardLogger(), game, store, opts)
	}

	n := cfg.Players
	if *players > 0 {
		n = *players
	}

	return room.NewDealer(logrus.StandardLogger(), room.NewRegistry(n), opts)
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
