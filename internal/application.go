package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/knucklebones-backend/internal/config"
	"github.com/rocketscienceinc/knucklebones-backend/internal/game"
	"github.com/rocketscienceinc/knucklebones-backend/internal/ice"
	"github.com/rocketscienceinc/knucklebones-backend/internal/matchmaking"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository/storage"
	"github.com/rocketscienceinc/knucklebones-backend/internal/usecase"
	"github.com/rocketscienceinc/knucklebones-backend/transport/rest"
	"github.com/rocketscienceinc/knucklebones-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Addr:        redisAddrString,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: conf.Redis.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	signer, err := matchmaking.LoadTicketSigner(conf.ServerKeyPath)
	if err != nil {
		return fmt.Errorf("could not load server key: %w", err)
	}

	iceProvider, err := ice.New(conf.ICE.Provider, conf.ICE.TurnTokenID, conf.ICE.APIToken)
	if err != nil {
		return fmt.Errorf("could not configure ice provider: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	matchRepo := repository.NewMatchRepository(sqliteStorage.Connection)

	playerManager := usecase.NewPlayerManager(logger, playerRepo)
	matchManager := usecase.NewMatchManager(logger, matchRepo, playerManager, signer,
		game.DeckSize{Width: conf.Deck.Width, Height: conf.Deck.Height})
	matchmaker := usecase.NewMatchmaker(logger, matchmaking.NewRegistry(), matchmaking.NewQueues(),
		signer, iceProvider, playerManager, matchRepo)

	socket := websocket.New(logger, matchmaker, websocket.Options{
		WriteWait:      conf.WebSocket.WriteWait,
		PongWait:       conf.WebSocket.PongWait,
		OutboundBuffer: conf.WebSocket.OutboundBuffer,
	})

	ping := rest.NewPingHandler(logger, map[string]rest.Pinger{
		"redis":  redisStorage.Ping,
		"sqlite": sqliteStorage.Connection.PingContext,
	})

	leaderBoard := usecase.NewLeaderBoardManager(logger, matchRepo, playerRepo)

	handlers := rest.NewHandlers(logger, playerManager, matchManager, matchmaker, leaderBoard)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return matchmaker.SweepQueues(groupCtx, conf.PrivateQueueTTL)
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		return rest.Start(groupCtx, conf.HTTPPort, rest.NewRouter(handlers, ping, socket.Handler(groupCtx)))
	})

	if err = group.Wait(); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
