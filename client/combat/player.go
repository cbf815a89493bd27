package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"skirmish/client/domain"
)

const (
	MaxHealth  uint8   = 100
	AmmoCost   uint32  = 300 // 弾薬補充の価格
	HealCost   uint32  = 200 // 回復の価格
	PlayerSize float32 = 32
)

// FrameResult は1フレームの処理結果です。
type FrameResult struct {
	Spawns []ProjectileSpawnRequest
	State  WeaponState
}

// Player はローカルプレイヤーの射撃とリロードを毎フレーム判定します。
// フレームループのゴルーチンだけが触る前提です。
type Player struct {
	ID          domain.SessionID
	Name        string
	Rect        Rect
	Grid        domain.GridCell
	Orientation float32
	Health      uint8
	Ready       bool
	Reloading   bool

	Inventory *Inventory

	timers   *TimerRegistry[TimerKey]
	assets   domain.AssetLookup
	sender   domain.Sender
	metrics  *Metrics
	diedSent bool
}

type PlayerOption func(*Player)

// WithClock はクールダウン判定に使う時計を差し替えます。
func WithClock(clock Clock) PlayerOption {
	return func(p *Player) {
		p.timers = NewTimerRegistry[TimerKey](clock)
	}
}

func WithMetrics(m *Metrics) PlayerOption {
	return func(p *Player) {
		p.metrics = m
	}
}

func NewPlayer(name string, sender domain.Sender, assets domain.AssetLookup, opts ...PlayerOption) *Player {
	p := &Player{
		Name:      name,
		Rect:      Rect{Width: PlayerSize, Height: PlayerSize},
		Health:    MaxHealth,
		Inventory: NewInventory(),
		timers:    NewTimerRegistry[TimerKey](SystemClock),
		assets:    assets,
		sender:    sender,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}
	return p
}

// Activate はサーバーから割り当てられたIDを設定し、入力の受付を始めます。
func (p *Player) Activate(id domain.SessionID) {
	p.ID = id
	p.Ready = true
}

func (p *Player) IsAlive() bool {
	return p.Health > 0
}

// MoveTo は矩形の位置とタイル座標を更新します。
func (p *Player) MoveTo(pos Vec2) Vec2 {
	p.Grid = domain.GridCell{
		X: int32(math.Round(float64(pos.X / WorldTileSize))),
		Y: int32(math.Round(float64(pos.Y / WorldTileSize))),
	}
	p.Rect.Position = pos
	return p.Rect.Position
}

// Update は1フレーム分の入力を処理します。
// 送信に失敗したメッセージのエラーはまとめて返しますが、このフレームの状態変更は取り消しません。
func (p *Player) Update(ctx context.Context, in FrameInput) (FrameResult, error) {
	if !p.Ready {
		return FrameResult{State: p.State()}, nil
	}

	var (
		spawns []ProjectileSpawnRequest
		errs   []error
	)
	if p.IsAlive() {
		p.Orientation = in.Orientation

		var err error
		spawns, err = p.tryFire(ctx, in)
		errs = append(errs, err)
	}
	errs = append(errs, p.netUpdate(ctx, in))

	return FrameResult{Spawns: spawns, State: p.State()}, errors.Join(errs...)
}

// State は選択中の武器の状態を返します。
func (p *Player) State() WeaponState {
	if p.Reloading {
		return StateReloading
	}
	w, ok := p.Inventory.Selected()
	if !ok {
		return StateIdle
	}
	if elapsed, ok := p.timers.Elapsed(FireTimer(w.Variant)); ok && elapsed < w.Stats.FireTime() {
		return StateCooling
	}
	return StateIdle
}

// SelectWeapon は所持している武器を選択し、その武器の発射タイマーを起動します。
func (p *Player) SelectWeapon(v WeaponVariant) bool {
	if !p.Inventory.Select(v) {
		return false
	}
	p.armFireTimer(v)
	return true
}

func (p *Player) armFireTimer(v WeaponVariant) bool {
	key := FireTimer(v)
	if p.timers.Has(key) {
		return false
	}
	p.timers.Add(key)
	return true
}

// fireReady は発射間隔を判定します。未起動のタイマーはここで起動し、このフレームは撃てません。
func (p *Player) fireReady(w *Weapon) bool {
	if p.armFireTimer(w.Variant) {
		return false
	}
	return p.timers.After(FireTimer(w.Variant), w.Stats.FireTime())
}

func (p *Player) tryFire(ctx context.Context, in FrameInput) ([]ProjectileSpawnRequest, error) {
	if !in.Held.Has(KeyFire) || p.Reloading {
		return nil, nil
	}
	w, ok := p.Inventory.Selected()
	if !ok || !p.fireReady(w) {
		return nil, nil
	}

	w.ConsumeRound()
	if !w.ShouldSpawn() {
		p.metrics.Shot(ctx, w.Variant, 0)
		return nil, nil
	}

	muzzle := w.MuzzlePosition(p.assets, p.Rect, p.Orientation)
	angles := w.Stats.Accuracy().DeviationAngles(p.Orientation)
	spawns := make([]ProjectileSpawnRequest, 0, len(angles))
	var errs []error
	for _, angle := range angles {
		spawn := NewProjectileSpawn(muzzle, angle, p.ID, w.Stats.Damage())
		spawns = append(spawns, spawn)
		errs = append(errs, p.send(ctx, spawn.Payload()))
	}
	p.metrics.Shot(ctx, w.Variant, len(spawns))
	return spawns, errors.Join(errs...)
}

func (p *Player) netUpdate(ctx context.Context, in FrameInput) error {
	if !p.IsAlive() {
		if p.diedSent {
			return nil
		}
		// 送れなかった場合は次のフレームで再送する
		if err := p.send(ctx, &domain.PlayerDied{PlayerID: p.ID}); err != nil {
			return err
		}
		p.diedSent = true
		return nil
	}

	var errs []error
	errs = append(errs, p.send(ctx, &domain.OrientationUpdate{PlayerID: p.ID, Orientation: p.Orientation}))

	w, ok := p.Inventory.Selected()
	if !ok {
		// リロード中の武器が外された
		p.Reloading = false
	} else {
		if in.Pressed.Has(KeyReload) {
			p.Reloading = true
			p.timers.Add(ReloadTimer)
		}
		if p.Reloading && p.timers.After(ReloadTimer, w.Stats.ReloadTime()) {
			p.Reloading = false
			w.Reload()
			p.metrics.Reloaded(ctx, w.Variant)
		}
		if in.Pressed.Has(KeyRestock) && w.CurrTotalAmmo < w.Stats.TotalAmmo() && p.Inventory.CanAfford(AmmoCost) {
			errs = append(errs, p.request(ctx, "restock", domain.AmmoRestockRequest{}))
		}
	}

	if in.Pressed.Has(KeyHeal) && p.Health < MaxHealth && p.Inventory.CanAfford(HealCost) {
		errs = append(errs, p.request(ctx, "heal", &domain.HealRequest{PlayerID: p.ID}))
	}

	for _, v := range AllVariants {
		stats := StatsOf(v)
		if !in.Pressed.Has(stats.EquipKey()) || p.Reloading {
			continue
		}
		if p.Inventory.Has(v) {
			p.SelectWeapon(v)
			errs = append(errs, p.request(ctx, "select", &domain.WeaponSelect{PlayerID: p.ID, Variant: uint8(v)}))
		} else if p.Inventory.CanAfford(stats.Price()) {
			errs = append(errs, p.request(ctx, "purchase", &domain.WeaponPurchaseRequest{Variant: uint8(v)}))
		}
	}

	return errors.Join(errs...)
}

func (p *Player) request(ctx context.Context, kind string, msg domain.Payload) error {
	p.metrics.Request(ctx, kind)
	return p.send(ctx, msg)
}

func (p *Player) send(ctx context.Context, msg domain.Payload) error {
	if err := p.sender.Send(ctx, domain.ChannelOf(msg), msg); err != nil {
		return fmt.Errorf("send %s: %w", domain.CombatSubType(msg.PayloadHeader().SubType), err)
	}
	return nil
}

// Apply はサーバーが確定した結果を反映します。
func (p *Player) Apply(ctx context.Context, msg domain.Payload) {
	switch m := msg.(type) {
	case *domain.CashUpdate:
		p.Inventory.SetCash(m.Cash)
	case *domain.WeaponGrant:
		v, err := ParseVariant(m.Variant)
		if err != nil {
			slog.WarnContext(ctx, "ignoring weapon grant", "err", err)
			return
		}
		p.Inventory.Add(NewWeapon(v))
		p.SelectWeapon(v)
		slog.InfoContext(ctx, "weapon granted", "weapon", v)
	case domain.AmmoRestocked:
		p.Inventory.RefillAmmo()
	case domain.InventoryReset:
		p.Inventory.ResetWeapons()
		p.Reloading = false
	case *domain.HealthUpdate:
		p.Health = m.Health
		if p.IsAlive() {
			p.diedSent = false
		}
	default:
		h := msg.PayloadHeader()
		slog.DebugContext(ctx, "unhandled inbound message", "dataType", h.DataType, "subType", h.SubType)
	}
}
