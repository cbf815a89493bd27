package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	adapterwebsocket "skirmish/client/adapter/websocket"
	"skirmish/client/combat"
	"skirmish/client/domain"
	"skirmish/client/frame"
	"skirmish/utils"
)

const reconnectDelay = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownLogger, err := setupLogger(ctx,
		utils.GetEnvDefault("LOG_LEVEL", "info"),
		utils.GetEnvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	)
	if err != nil {
		slog.Error("failed to set up logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownLogger(context.Background()); err != nil {
			slog.Error("failed to flush logs", "err", err)
		}
	}()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	name := utils.GetEnvDefault("PLAYER_NAME", "headless")
	tickRateStr := utils.GetEnvDefault("TICK_RATE", strconv.Itoa(frame.DefaultTickRate))
	tickRate, err := strconv.Atoi(tickRateStr)
	if err != nil || tickRate <= 0 {
		slog.Error("invalid TICK_RATE", "value", tickRateStr)
		os.Exit(1)
	}

	idleTimeoutStr := utils.GetEnvDefault("IDLE_TIMEOUT", "10s")
	idleTimeout, err := time.ParseDuration(idleTimeoutStr)
	if err != nil || idleTimeout < 0 {
		slog.Error("invalid IDLE_TIMEOUT", "value", idleTimeoutStr)
		os.Exit(1)
	}

	serverURL := fmt.Sprintf("ws://%s:%s/ws", addr, port)
	slog.InfoContext(ctx, "starting client", "server", serverURL, "name", name, "tickRate", tickRate, "idleTimeout", idleTimeout)

	for {
		err := runSession(ctx, serverURL, name, tickRate, idleTimeout)
		if ctx.Err() != nil {
			break
		}
		slog.WarnContext(ctx, "session ended, reconnecting", "err", err)
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
	slog.InfoContext(ctx, "client stopped")
}

// runSession は1回の接続の間、エンドポイントとフレームループを動かします。
func runSession(ctx context.Context, serverURL, name string, tickRate int, idleTimeout time.Duration) error {
	transport, err := adapterwebsocket.Dial(ctx, serverURL)
	if err != nil {
		return err
	}
	endpoint, err := domain.NewClientEndpoint(domain.NewConnection(transport), domain.WithIdleTimeout(idleTimeout))
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "connected")

	player := combat.NewPlayer(name, endpoint, defaultAssets)
	player.MoveTo(combat.Vec2{X: 400, Y: 300})

	loop, err := frame.New(frame.Config{
		Player:   player,
		Endpoint: endpoint,
		Input:    frame.NewBotInput(),
		Sink:     logSink{},
		TickRate: tickRate,
	})
	if err != nil {
		endpoint.Close()
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return endpoint.Run(ctx)
	})
	eg.Go(func() error {
		return loop.Run(ctx)
	})
	return eg.Wait()
}

// logSink は描画を持たないクライアントで弾の生成をログに出すだけのProjectileSinkです。
type logSink struct{}

func (logSink) Spawn(ctx context.Context, spawns []combat.ProjectileSpawnRequest) {
	for _, s := range spawns {
		slog.DebugContext(ctx, "projectile spawned",
			"id", s.ID, "x", s.Position.X, "y", s.Position.Y, "orientation", s.Orientation)
	}
}
