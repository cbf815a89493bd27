package frame

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"skirmish/client/combat"
	"skirmish/client/domain"
)

const DefaultTickRate = 60

var (
	ErrPlayerRequired   = errors.New("frame: player is required")
	ErrEndpointRequired = errors.New("frame: endpoint is required")
	ErrInputRequired    = errors.New("frame: input source is required")
	ErrAlreadyStarted   = errors.New("frame: run called multiple times")
)

// Endpoint はフレームループから見たサーバー接続です。
type Endpoint interface {
	Inbound() <-chan domain.Payload
	SessionID() (domain.SessionID, bool)
}

// InputSource は毎フレームの入力を返します。
type InputSource interface {
	Next(ctx context.Context, player *combat.Player) combat.FrameInput
}

// ProjectileSink は生成された弾をローカルの弾丸エンティティとして受け取ります。
type ProjectileSink interface {
	Spawn(ctx context.Context, spawns []combat.ProjectileSpawnRequest)
}

// Config はフレームループの設定です。
type Config struct {
	Player   *combat.Player
	Endpoint Endpoint
	Input    InputSource
	Sink     ProjectileSink // 省略可
	TickRate int
}

// Loop は1つのゴルーチンで一定間隔ごとにプレイヤーを更新します。
// Playerを触るのはこのゴルーチンだけです。
type Loop struct {
	player   *combat.Player
	endpoint Endpoint
	input    InputSource
	sink     ProjectileSink
	interval time.Duration

	started atomic.Bool
	frames  atomic.Uint64
}

func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Player == nil:
		return nil, ErrPlayerRequired
	case cfg.Endpoint == nil:
		return nil, ErrEndpointRequired
	case cfg.Input == nil:
		return nil, ErrInputRequired
	}
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Loop{
		player:   cfg.Player,
		endpoint: cfg.Endpoint,
		input:    cfg.Input,
		sink:     cfg.Sink,
		interval: time.Second / time.Duration(tickRate),
	}, nil
}

// Run はctxが終わるまでフレームを回します。1度しか呼べません。
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "frame loop stopped", "frames", l.frames.Load())
			return nil
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

// Step は1フレーム分の処理を行います。
// サーバーからの確定結果を先に反映してから入力を処理します。
func (l *Loop) Step(ctx context.Context) {
	l.frames.Add(1)
	l.drainInbound(ctx)

	if !l.player.Ready {
		if id, ok := l.endpoint.SessionID(); ok {
			l.player.Activate(id)
			slog.InfoContext(ctx, "player ready", "sessionID", id, "name", l.player.Name)
		}
	}

	in := l.input.Next(ctx, l.player)
	res, err := l.player.Update(ctx, in)
	if err != nil {
		slog.WarnContext(ctx, "frame update failed", "frame", l.frames.Load(), "err", err)
	}
	if l.sink != nil && len(res.Spawns) > 0 {
		l.sink.Spawn(ctx, res.Spawns)
	}
}

func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

func (l *Loop) drainInbound(ctx context.Context) {
	for {
		select {
		case msg, ok := <-l.endpoint.Inbound():
			if !ok {
				return
			}
			l.player.Apply(ctx, msg)
		default:
			return
		}
	}
}
