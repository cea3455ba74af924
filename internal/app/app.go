package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/controller"
	bindingInmemory "github.com/sharetube/watchparty/internal/repository/binding/inmemory"
	roomrepo "github.com/sharetube/watchparty/internal/repository/room"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	roomRedis "github.com/sharetube/watchparty/internal/repository/room/redis"
	wssender "github.com/sharetube/watchparty/internal/repository/ws-sender"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/redisclient"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
	"golang.org/x/sync/errgroup"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const shutdownTimeout = 30 * time.Second

type AppConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	LogLevel        string        `json:"log_level"`
	Store           string        `json:"store"`
	MembersLimit    int           `json:"members_limit"`
	PlaylistLimit   int           `json:"playlist_limit"`
	RoomGracePeriod time.Duration `json:"room_grace_period"`
	RoomTTL         time.Duration `json:"room_ttl"`
	RelayTimeout    time.Duration `json:"relay_timeout"`
	AckDenials      bool          `json:"ack_denials"`
	RedisPort       int           `json:"redis_port"`
	RedisHost       string        `json:"redis_host"`
	RedisPassword   string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.By(func(any) error {
			var level slog.Level
			return level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel)))
		})),
		validation.Field(&cfg.Store, validation.Required, validation.In(StoreMemory, StoreRedis)),
		validation.Field(&cfg.MembersLimit, validation.Required, validation.Min(1)),
		validation.Field(&cfg.PlaylistLimit, validation.Required, validation.Min(1)),
		validation.Field(&cfg.RoomGracePeriod, validation.Required, validation.Min(time.Duration(0))),
		validation.Field(&cfg.RelayTimeout, validation.Required, validation.Min(time.Duration(0))),
		validation.Field(&cfg.RoomTTL, validation.When(cfg.Store == StoreRedis, validation.Required)),
		validation.Field(&cfg.RedisHost, validation.When(cfg.Store == StoreRedis, validation.Required)),
		validation.Field(&cfg.RedisPort, validation.When(cfg.Store == StoreRedis, validation.Required, validation.Min(1), validation.Max(65535))),
	)
}

func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// NewHandler wires repositories, the room service and the controller.
// The returned cleanup releases timers and store connections.
func NewHandler(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (http.Handler, func(), error) {
	var (
		roomRepo   roomrepo.Repo
		closeStore = func() {}
	)

	switch cfg.Store {
	case StoreRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Port:     cfg.RedisPort,
			Host:     cfg.RedisHost,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		closeStore = func() { rc.Close() }
		roomRepo = roomRedis.NewRepo(rc, cfg.RoomTTL, logger)
	default:
		roomRepo = roomInmemory.NewRepo(logger)
	}

	channelRepo := wssender.NewRepo(logger)
	roomService := room.NewService(
		roomRepo,
		bindingInmemory.NewRepo(logger),
		channelRepo,
		ytvideodata.New(),
		&room.Config{
			MembersLimit:    cfg.MembersLimit,
			PlaylistLimit:   cfg.PlaylistLimit,
			RoomGracePeriod: cfg.RoomGracePeriod,
			RelayTimeout:    cfg.RelayTimeout,
			AckDenials:      cfg.AckDenials,
		},
		logger,
	)
	c := controller.NewController(roomService, channelRepo, logger)

	cleanup := func() {
		roomService.Close()
		closeStore()
	}

	return c.GetMux(), cleanup, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	handler, cleanup, err := NewHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
