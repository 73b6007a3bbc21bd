package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	bmysql "plemiona/internal/battle/infra/persistence/mysql"
	"plemiona/internal/battle/infra/persistence/mongodb"
	bservice "plemiona/internal/battle/service"
	gamehttp "plemiona/internal/game/interfaces/handler/http"
	"plemiona/internal/sched"
	smysql "plemiona/internal/session/infra/persistence/mysql"
	sservice "plemiona/internal/session/service"
	"plemiona/internal/shared/config"
	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
	"plemiona/internal/shared/infrastructure/db"
	"plemiona/internal/shared/infrastructure/mongo"
	"plemiona/internal/shared/logs"
	transporthttp "plemiona/internal/shared/transport/http"
	"plemiona/internal/shared/transport/ws"
	"plemiona/internal/shared/utils"
	"plemiona/internal/shared/worldmap"
	vdomain "plemiona/internal/village/domain"
	vmysql "plemiona/internal/village/infra/persistence/mysql"
	vservice "plemiona/internal/village/service"
	"plemiona/modules/kit/logx"
)

func main() {
	config.Load("")
	if err := logs.Init("game", config.Conf.Log); err != nil {
		panic(err)
	}
	logs.Info("conf", zap.Any("conf", config.Conf))

	buildings.Load()
	units.Load()

	gormDB, err := db.Open(config.Conf.MySQL)
	if err != nil {
		logs.Fatal("open db failed", zap.Error(err))
	}

	mongoClient, err := mongo.Open(config.Conf.Mongo, logs.Logger())
	if err != nil {
		logs.Fatal("open mongodb failed", zap.Error(err))
	}
	mongoDB := mongoClient.Database(config.Conf.Mongo.DBName)

	log := logx.NewZapLogger(logs.Logger())
	clock := clockwork.NewRealClock()

	scheduler, err := sched.NewGocronScheduler(clock, log)
	if err != nil {
		logs.Fatal("start scheduler failed", zap.Error(err))
	}

	hub := ws.NewHub(log)
	locks := utils.NewKeyedMutex()
	registry := sservice.NewHandleRegistry()

	villageRepo := vmysql.NewVillageRepo(gormDB)
	battleRepo := bmysql.NewBattleRepo(gormDB)
	reportArchive := mongodb.NewReportRepository(mongoDB)
	sessionRepo := smysql.NewSessionRepo(gormDB)
	playerRepo := smysql.NewPlayerRepo(gormDB)

	gameCfg := config.Conf.Game
	sessionSvc := sservice.NewSessionService(
		sessionRepo, playerRepo, villageRepo,
		scheduler, registry,
		worldmap.NewGridAllocator(gameCfg.MapSize),
		hub, clock,
		sservice.SessionConfig{
			DurationSec: gameCfg.SessionDurationSec,
			MinPlayers:  gameCfg.MinPlayers,
			MaxPlayers:  gameCfg.MaxPlayers,
			StartResources: vdomain.Resources{
				Wood: gameCfg.StartWood,
				Clay: gameCfg.StartClay,
				Iron: gameCfg.StartIron,
			},
			StartMorale: float64(gameCfg.StartMorale),
		},
	)
	villageSvc := vservice.NewVillageService(villageRepo, scheduler, registry, hub, clock, locks)
	battleSvc := bservice.NewBattleService(battleRepo, reportArchive, villageRepo, scheduler, registry, hub, clock, locks)

	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sessionSvc.Recover(recoverCtx, battleSvc, villageSvc); err != nil {
		logs.Fatal("session recovery failed", zap.Error(err))
	}
	recoverCancel()

	addr := fmt.Sprintf("%s:%d", config.Conf.HTTPServer.Host, config.Conf.HTTPServer.Port)
	server := transporthttp.NewHttpServer(addr, nil, log)
	gamehttp.NewGameHandler(sessionSvc, villageSvc, battleSvc, hub).Register(server.Group())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logs.Info("game http server started", zap.String("addr", addr))
		if err := server.Start(); err != nil && err != nethttp.ErrServerClosed {
			errCh <- fmt.Errorf("game http serve failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logs.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logs.Error("server exited abnormally", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Error("http shutdown failed", zap.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		logs.Error("scheduler shutdown failed", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logs.Error("mongodb disconnect failed", zap.Error(err))
	}
}
