package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrServerIdle はサーバーから一定時間何も届かなかった場合に返されるエラーです。
var ErrServerIdle = errors.New("no message from server within idle timeout")

// IdleMonitor はサーバーからの最終受信時刻を見張る死活監視です。
// サーバーは定期的にpingを送るため、受信が途絶えた接続は切れているとみなします。
type IdleMonitor struct {
	timeout  time.Duration
	lastRead atomic.Int64 // UnixNano
}

func NewIdleMonitor(timeout time.Duration) *IdleMonitor {
	m := &IdleMonitor{timeout: timeout}
	m.Touch()
	return m
}

// Touch は受信があったことを記録します。
func (m *IdleMonitor) Touch() {
	m.lastRead.Store(time.Now().UnixNano())
}

func (m *IdleMonitor) Idle() time.Duration {
	return time.Since(time.Unix(0, m.lastRead.Load()))
}

// Run はtimeoutの半分の間隔で最終受信時刻を確認し、timeoutを超えたらErrServerIdleを返します。
func (m *IdleMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(m.timeout/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if idle := m.Idle(); idle > m.timeout {
				slog.WarnContext(ctx, "server idle, closing", "idle", idle, "timeout", m.timeout)
				return ErrServerIdle
			}
		}
	}
}
