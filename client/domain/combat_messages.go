package domain

import (
	"errors"
	"math"

	"skirmish/utils"
)

// 戦闘メッセージのペイロードサイズ
const (
	ProjectileCreateSize  = 61 // 16 + 8 + 8 + 8 + 4 + 16 + 1
	PlayerDiedSize        = 16
	OrientationUpdateSize = 20 // 16 + 4
	HealRequestSize       = 16
	WeaponPurchaseSize    = 1
	WeaponSelectSize      = 17 // 16 + 1
	CashUpdateSize        = 4
	WeaponGrantSize       = 1
	HealthUpdateSize      = 1
)

var (
	ErrInvalidProjectileCreateSize  = errors.New("invalid projectile create size")
	ErrInvalidPlayerDiedSize        = errors.New("invalid player died size")
	ErrInvalidOrientationUpdateSize = errors.New("invalid orientation update size")
	ErrInvalidHealRequestSize       = errors.New("invalid heal request size")
	ErrInvalidWeaponPurchaseSize    = errors.New("invalid weapon purchase size")
	ErrInvalidWeaponSelectSize      = errors.New("invalid weapon select size")
	ErrInvalidCashUpdateSize        = errors.New("invalid cash update size")
	ErrInvalidWeaponGrantSize       = errors.New("invalid weapon grant size")
	ErrInvalidHealthUpdateSize      = errors.New("invalid health update size")
)

func combatHeader(sub CombatSubType) PayloadHeader {
	return PayloadHeader{DataType: DataTypeCombat, SubType: uint8(sub)}
}

func readSessionID(data []byte) SessionID {
	var b [16]byte
	copy(b[:], data[:16])
	return SessionIDFromBytes(b)
}

func putSessionID(dst []byte, id SessionID) {
	b := id.Bytes()
	copy(dst[:16], b[:])
}

// ProjectileCreate は弾丸生成イベント (61バイト)
//
//	id          [16]byte (16) - 弾丸ID (UUID)
//	position    Position2D (8)
//	grid        GridCell (8)
//	velocity    Position2D (8)
//	orientation float32 (4) - ラジアン
//	shooter     [16]byte (16)
//	damage      u8 (1)
type ProjectileCreate struct {
	ID          [16]byte
	Position    Position2D
	Grid        GridCell
	Velocity    Position2D
	Orientation float32
	Shooter     SessionID
	Damage      uint8
}

func (p *ProjectileCreate) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeProjectileCreate)
}

// Encode はProjectileCreateをバイト列にエンコードする
func (p *ProjectileCreate) Encode() ([]byte, error) {
	if !utils.Finite32(p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y, p.Orientation) {
		return nil, ErrNonFiniteValue
	}
	data := make([]byte, ProjectileCreateSize)
	copy(data[0:16], p.ID[:])
	copy(data[16:24], p.Position.Encode())
	copy(data[24:32], p.Grid.Encode())
	copy(data[32:40], p.Velocity.Encode())
	byteOrder.PutUint32(data[40:44], math.Float32bits(p.Orientation))
	putSessionID(data[44:60], p.Shooter)
	data[60] = p.Damage
	return data, nil
}

// ParseProjectileCreate はバイト列からProjectileCreateをパースする
func ParseProjectileCreate(data []byte) (*ProjectileCreate, error) {
	if len(data) < ProjectileCreateSize {
		return nil, ErrInvalidProjectileCreateSize
	}

	pos, err := ParsePosition2D(data[16:24])
	if err != nil {
		return nil, err
	}
	grid, err := ParseGridCell(data[24:32])
	if err != nil {
		return nil, err
	}
	vel, err := ParsePosition2D(data[32:40])
	if err != nil {
		return nil, err
	}

	p := &ProjectileCreate{
		Position:    *pos,
		Grid:        *grid,
		Velocity:    *vel,
		Orientation: math.Float32frombits(byteOrder.Uint32(data[40:44])),
		Shooter:     readSessionID(data[44:60]),
		Damage:      data[60],
	}
	copy(p.ID[:], data[0:16])
	return p, nil
}

// PlayerDied はプレイヤー死亡通知 (16バイト)
type PlayerDied struct {
	PlayerID SessionID
}

func (p *PlayerDied) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypePlayerDied)
}

func (p *PlayerDied) Encode() ([]byte, error) {
	data := make([]byte, PlayerDiedSize)
	putSessionID(data, p.PlayerID)
	return data, nil
}

func ParsePlayerDied(data []byte) (*PlayerDied, error) {
	if len(data) < PlayerDiedSize {
		return nil, ErrInvalidPlayerDiedSize
	}
	return &PlayerDied{PlayerID: readSessionID(data)}, nil
}

// OrientationUpdate はプレイヤーの向きの更新 (20バイト)
//
//	playerID    [16]byte (16)
//	orientation float32  (4) - ラジアン
type OrientationUpdate struct {
	PlayerID    SessionID
	Orientation float32
}

func (o *OrientationUpdate) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeOrientation)
}

func (o *OrientationUpdate) Encode() ([]byte, error) {
	if !utils.Finite32(o.Orientation) {
		return nil, ErrNonFiniteValue
	}
	data := make([]byte, OrientationUpdateSize)
	putSessionID(data[0:16], o.PlayerID)
	byteOrder.PutUint32(data[16:20], math.Float32bits(o.Orientation))
	return data, nil
}

func ParseOrientationUpdate(data []byte) (*OrientationUpdate, error) {
	if len(data) < OrientationUpdateSize {
		return nil, ErrInvalidOrientationUpdateSize
	}
	return &OrientationUpdate{
		PlayerID:    readSessionID(data[0:16]),
		Orientation: math.Float32frombits(byteOrder.Uint32(data[16:20])),
	}, nil
}

// AmmoRestockRequest は弾薬補充の購入リクエスト (ペイロードなし)
type AmmoRestockRequest struct{}

func (AmmoRestockRequest) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeAmmoRestock)
}

func (AmmoRestockRequest) Encode() ([]byte, error) {
	return nil, nil
}

// HealRequest は回復の購入リクエスト (16バイト)
type HealRequest struct {
	PlayerID SessionID
}

func (h *HealRequest) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeHeal)
}

func (h *HealRequest) Encode() ([]byte, error) {
	data := make([]byte, HealRequestSize)
	putSessionID(data, h.PlayerID)
	return data, nil
}

func ParseHealRequest(data []byte) (*HealRequest, error) {
	if len(data) < HealRequestSize {
		return nil, ErrInvalidHealRequestSize
	}
	return &HealRequest{PlayerID: readSessionID(data)}, nil
}

// WeaponPurchaseRequest は未所持武器の購入リクエスト (1バイト)
type WeaponPurchaseRequest struct {
	Variant uint8
}

func (w *WeaponPurchaseRequest) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeWeaponPurchase)
}

func (w *WeaponPurchaseRequest) Encode() ([]byte, error) {
	return []byte{w.Variant}, nil
}

func ParseWeaponPurchaseRequest(data []byte) (*WeaponPurchaseRequest, error) {
	if len(data) < WeaponPurchaseSize {
		return nil, ErrInvalidWeaponPurchaseSize
	}
	return &WeaponPurchaseRequest{Variant: data[0]}, nil
}

// WeaponSelect は武器持ち替えのブロードキャスト (17バイト)
type WeaponSelect struct {
	PlayerID SessionID
	Variant  uint8
}

func (w *WeaponSelect) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeWeaponSelect)
}

func (w *WeaponSelect) Encode() ([]byte, error) {
	data := make([]byte, WeaponSelectSize)
	putSessionID(data[0:16], w.PlayerID)
	data[16] = w.Variant
	return data, nil
}

func ParseWeaponSelect(data []byte) (*WeaponSelect, error) {
	if len(data) < WeaponSelectSize {
		return nil, ErrInvalidWeaponSelectSize
	}
	return &WeaponSelect{
		PlayerID: readSessionID(data[0:16]),
		Variant:  data[16],
	}, nil
}

// CashUpdate はサーバーが確定した所持金 (4バイト)
type CashUpdate struct {
	Cash uint32
}

func (c *CashUpdate) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeCashUpdate)
}

func (c *CashUpdate) Encode() ([]byte, error) {
	data := make([]byte, CashUpdateSize)
	byteOrder.PutUint32(data, c.Cash)
	return data, nil
}

func ParseCashUpdate(data []byte) (*CashUpdate, error) {
	if len(data) < CashUpdateSize {
		return nil, ErrInvalidCashUpdateSize
	}
	return &CashUpdate{Cash: byteOrder.Uint32(data[0:4])}, nil
}

// WeaponGrant は購入が承認された武器 (1バイト)
type WeaponGrant struct {
	Variant uint8
}

func (w *WeaponGrant) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeWeaponGrant)
}

func (w *WeaponGrant) Encode() ([]byte, error) {
	return []byte{w.Variant}, nil
}

func ParseWeaponGrant(data []byte) (*WeaponGrant, error) {
	if len(data) < WeaponGrantSize {
		return nil, ErrInvalidWeaponGrantSize
	}
	return &WeaponGrant{Variant: data[0]}, nil
}

// AmmoRestocked は弾薬補充の承認 (ペイロードなし)
type AmmoRestocked struct{}

func (AmmoRestocked) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeAmmoRestocked)
}

func (AmmoRestocked) Encode() ([]byte, error) {
	return nil, nil
}

// InventoryReset はリスポーン時の所持武器リセット (ペイロードなし)
type InventoryReset struct{}

func (InventoryReset) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeInventoryReset)
}

func (InventoryReset) Encode() ([]byte, error) {
	return nil, nil
}

// HealthUpdate はサーバーが確定した体力 (1バイト)
type HealthUpdate struct {
	Health uint8
}

func (h *HealthUpdate) PayloadHeader() PayloadHeader {
	return combatHeader(CombatSubTypeHealthUpdate)
}

func (h *HealthUpdate) Encode() ([]byte, error) {
	return []byte{h.Health}, nil
}

func ParseHealthUpdate(data []byte) (*HealthUpdate, error) {
	if len(data) < HealthUpdateSize {
		return nil, ErrInvalidHealthUpdateSize
	}
	return &HealthUpdate{Health: data[0]}, nil
}

// ParseCombatPayload はcombatサブタイプに応じてペイロードをパースする
func ParseCombatPayload(subType CombatSubType, data []byte) (Payload, error) {
	switch subType {
	case CombatSubTypeProjectileCreate:
		return ParseProjectileCreate(data)
	case CombatSubTypePlayerDied:
		return ParsePlayerDied(data)
	case CombatSubTypeOrientation:
		return ParseOrientationUpdate(data)
	case CombatSubTypeAmmoRestock:
		return AmmoRestockRequest{}, nil
	case CombatSubTypeHeal:
		return ParseHealRequest(data)
	case CombatSubTypeWeaponPurchase:
		return ParseWeaponPurchaseRequest(data)
	case CombatSubTypeWeaponSelect:
		return ParseWeaponSelect(data)
	case CombatSubTypeCashUpdate:
		return ParseCashUpdate(data)
	case CombatSubTypeWeaponGrant:
		return ParseWeaponGrant(data)
	case CombatSubTypeAmmoRestocked:
		return AmmoRestocked{}, nil
	case CombatSubTypeInventoryReset:
		return InventoryReset{}, nil
	case CombatSubTypeHealthUpdate:
		return ParseHealthUpdate(data)
	default:
		return nil, ErrUnknownSubType
	}
}
