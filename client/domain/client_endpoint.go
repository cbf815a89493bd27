package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrEndpointClosed は閉じたエンドポイントへ送信した場合に返されるエラーです。
	ErrEndpointClosed = errors.New("client endpoint is closed")
	// ErrSessionNotAssigned はサーバーからセッションIDが通知される前に送信した場合に返されるエラーです。
	ErrSessionNotAssigned = errors.New("session id has not been assigned yet")
	// ErrInitializationFailed はエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize client endpoint")
)

const (
	defaultWriteQueueSize   = 1024
	defaultInboundQueueSize = 256
)

// ClientEndpoint はサーバーとの1接続を受け持ちます。
// 送信はキューに積むだけでブロックせず、受信した制御メッセージはここで処理し、
// 戦闘メッセージはフレームループが取り出せるようにInboundへ流します。
type ClientEndpoint struct {
	connection *Connection

	writeCh   chan []byte  // 書き込み用チャネル
	inboundCh chan Payload // フレームループ向けの受信チャネル

	sessionID atomic.Pointer[SessionID]
	seq       atomic.Uint32
	idle      *IdleMonitor // nilなら死活監視しない

	// lifecycle
	closed atomic.Bool
}

var _ Sender = (*ClientEndpoint)(nil)

type EndpointOption func(*ClientEndpoint)

// WithIdleTimeout はサーバーからの受信がtimeoutを超えて途絶えたら接続を終了させます。
func WithIdleTimeout(timeout time.Duration) EndpointOption {
	return func(e *ClientEndpoint) {
		if timeout > 0 {
			e.idle = NewIdleMonitor(timeout)
		}
	}
}

func NewClientEndpoint(connection *Connection, opts ...EndpointOption) (*ClientEndpoint, error) {
	if connection == nil {
		return nil, ErrInitializationFailed
	}
	e := &ClientEndpoint{
		connection: connection,
		writeCh:    make(chan []byte, defaultWriteQueueSize),
		inboundCh:  make(chan Payload, defaultInboundQueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run は読み込みループと書き込みループを起動し、どちらかが失敗するかctxが終わるまで待ちます。
func (e *ClientEndpoint) Run(ctx context.Context) error {
	defer e.Close()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return e.readLoop(ctx)
	})
	eg.Go(func() error {
		return e.writeLoop(ctx)
	})
	if e.idle != nil {
		e.idle.Touch()
		// ErrServerIdleでctxがキャンセルされ、読み込みループのReadも抜ける
		eg.Go(func() error {
			return e.idle.Run(ctx)
		})
	}
	return eg.Wait()
}

// Send はペイロードにヘッダーを付けて書き込みキューへ積みます。
// unreliableチャネルはキューが満杯なら黙って捨て、reliableチャネルはErrBackpressureを返します。
func (e *ClientEndpoint) Send(ctx context.Context, channel Channel, msg Payload) error {
	if e.closed.Load() {
		return ErrEndpointClosed
	}
	sessionID, ok := e.SessionID()
	if !ok {
		return ErrSessionNotAssigned
	}
	data, err := EncodeMessage(sessionID, e.nextSeq(), msg)
	if err != nil {
		h := msg.PayloadHeader()
		return fmt.Errorf("encode message type=%d subtype=%d: %w", h.DataType, h.SubType, err)
	}
	return e.enqueue(ctx, channel, data)
}

// SessionID はサーバーから割り当てられたセッションIDを返します。
func (e *ClientEndpoint) SessionID() (SessionID, bool) {
	id := e.sessionID.Load()
	if id == nil {
		return "", false
	}
	return *id, true
}

// Inbound はサーバーから届いた戦闘メッセージのチャネルです。
func (e *ClientEndpoint) Inbound() <-chan Payload {
	return e.inboundCh
}

func (e *ClientEndpoint) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.connection.Close()
}

func (e *ClientEndpoint) nextSeq() uint16 {
	return uint16(e.seq.Add(1) - 1)
}

func (e *ClientEndpoint) enqueue(ctx context.Context, channel Channel, data []byte) error {
	select {
	case e.writeCh <- data:
		return nil
	default:
		if !channel.Reliable() {
			slog.DebugContext(ctx, "writeCh full, unreliable message dropped", "channel", channel)
			return nil
		}
		return ErrBackpressure
	}
}

func (e *ClientEndpoint) readLoop(ctx context.Context) error {
	for {
		data, err := e.connection.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if e.idle != nil {
			e.idle.Touch()
		}
		e.handleData(ctx, data)
	}
}

func (e *ClientEndpoint) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-e.writeCh:
			if err := e.connection.Write(ctx, data); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

func (e *ClientEndpoint) handleData(ctx context.Context, data []byte) {
	header, payload, err := DecodeMessage(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to decode message", "err", err)
		return
	}

	switch p := payload.(type) {
	case ControlMessage:
		e.handleControlMessage(ctx, header, p.SubType)
	default:
		select {
		case e.inboundCh <- payload:
		default:
			h := payload.PayloadHeader()
			slog.WarnContext(ctx, "inboundCh full, message dropped", "dataType", h.DataType, "subType", h.SubType)
		}
	}
}

func (e *ClientEndpoint) handleControlMessage(ctx context.Context, header *Header, subType ControlSubType) {
	switch subType {
	case ControlSubTypeAssign:
		sessionID := SessionIDFromBytes(header.SessionID)
		e.sessionID.Store(&sessionID)
		slog.InfoContext(ctx, "session assigned", "sessionID", sessionID)
		// RoomIDが空のJoinでサーバーにルームを自動割り当てしてもらう
		if err := e.Send(ctx, ChannelReliableOrdered, &JoinPayload{}); err != nil {
			slog.WarnContext(ctx, "failed to send join", "err", err)
		}
	case ControlSubTypePing:
		if err := e.Send(ctx, ChannelReliableOrdered, ControlMessage{SubType: ControlSubTypePong}); err != nil {
			slog.WarnContext(ctx, "failed to send pong", "err", err)
		}
	case ControlSubTypeKick:
		slog.WarnContext(ctx, "kicked by server")
		e.Close()
	default:
		slog.DebugContext(ctx, "unhandled control message", "subType", subType)
	}
}
