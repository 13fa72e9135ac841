package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seojin-dev/boardwatch/internal/archive"
	appcfg "github.com/seojin-dev/boardwatch/internal/config"
	"github.com/seojin-dev/boardwatch/internal/feed"
	"github.com/seojin-dev/boardwatch/internal/maia"
	"github.com/seojin-dev/boardwatch/internal/obslog"
	"github.com/seojin-dev/boardwatch/internal/prefs"
	"github.com/seojin-dev/boardwatch/internal/session"
	"github.com/seojin-dev/boardwatch/internal/snapshot"
	"github.com/seojin-dev/boardwatch/internal/snapshot/profile"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	prof, err := profile.Load(cfg.ProfileDir)
	if err != nil {
		logger.Fatal("profile_load_error", zap.Error(err))
	}

	var store prefs.Store
	if cfg.RedisURL != "" {
		rs, err := prefs.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("prefs_init_error", zap.Error(err))
		}
		store = rs
	} else {
		logger.Warn("prefs_memory_fallback")
		store = prefs.NewMemoryStore()
	}

	advisor := maia.NewClient(cfg.MaiaBaseURL, maia.WithTimeout(cfg.RequestTimeout))

	ctrl := session.NewController(session.Config{
		Debounce:       time.Duration(cfg.DebounceMS) * time.Millisecond,
		RequestTimeout: cfg.RequestTimeout,
	}, snapshot.NewExtractor(prof), store, advisor, logger)

	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("archive_init_error", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		ctrl.AttachArchiver(archiveSink{repo: repo})
	}

	ctrl.OnRecommendation(func(rec session.Recommendation) {
		logger.Info("best_move",
			zap.String("game_id", rec.GameID),
			zap.String("move", rec.MoveUCI),
			zap.Int("elo", rec.Elo),
		)
	})
	ctrl.Start()

	ws := feed.NewWebSocket(cfg.BoardWSURL, 5, cfg.ReconnectDelay)
	ws.OnStateChange(func(state feed.State) {
		logger.Info("feed_state", zap.String("state", string(state)))
	})
	ws.OnNotification(ctrl.HandleNotification)

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		logger.Fatal("feed_connect_error", zap.Error(err))
	}
	cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
	ctrl.Stop()
	_ = store.Close()
}

// archiveSink bridges the controller's finished-game records to the
// database repository.
type archiveSink struct {
	repo *archive.Repository
}

func (s archiveSink) SaveGame(ctx context.Context, rec *session.Record) error {
	return s.repo.SaveGame(ctx, &archive.Record{
		GameID:      rec.GameID,
		SessionUUID: rec.SessionUUID,
		Winner:      rec.Winner,
		Result:      rec.Result,
		Reason:      rec.Reason,
		FinalFEN:    rec.FinalFEN,
		PlyCount:    rec.PlyCount,
		StartedAt:   rec.StartedAt,
		EndedAt:     rec.EndedAt,
	})
}
