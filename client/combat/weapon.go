package combat

import (
	"math"

	"skirmish/client/domain"
)

// WeaponScale は武器テクスチャの描画倍率です。
const WeaponScale float32 = 0.5

// Vec2 はワールド座標の2次元ベクトルです。
type Vec2 struct {
	X, Y float32
}

// Rect はプレイヤーの当たり矩形です。Positionは左上です。
type Rect struct {
	Position Vec2
	Width    float32
	Height   float32
}

func (r Rect) Center() Vec2 {
	return Vec2{X: r.Position.X + r.Width/2, Y: r.Position.Y + r.Height/2}
}

// WeaponState は武器の状態です。
type WeaponState uint8

const (
	StateIdle WeaponState = iota
	StateCooling
	StateReloading
)

func (s WeaponState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCooling:
		return "cooling"
	case StateReloading:
		return "reloading"
	default:
		return "unknown"
	}
}

// Weapon は所持している武器1つの弾薬状態です。
// マガジンと予備の2つのカウンタは射撃ではマガジンだけ、リロードでは両方が動きます。
type Weapon struct {
	Variant       WeaponVariant
	Stats         *WeaponStats
	CurrMagAmmo   uint16
	CurrTotalAmmo uint16
}

func NewWeapon(v WeaponVariant) *Weapon {
	stats := StatsOf(v)
	return &Weapon{
		Variant:       v,
		Stats:         stats,
		CurrMagAmmo:   stats.MagSize(),
		CurrTotalAmmo: stats.TotalAmmo(),
	}
}

// ConsumeRound はマガジンから1発減らします。0未満にはなりません。
func (w *Weapon) ConsumeRound() {
	if w.CurrMagAmmo > 0 {
		w.CurrMagAmmo--
	}
}

// ShouldSpawn は射撃後のマガジンが空でなく満タン未満のときに弾を生成するかを返します。
func (w *Weapon) ShouldSpawn() bool {
	return w.CurrMagAmmo != 0 && w.CurrMagAmmo < w.Stats.MagSize()
}

// Reload は予備からマガジンへ不足分を移します。予備が足りなければ何もしません。
func (w *Weapon) Reload() {
	delta := w.Stats.MagSize() - min(w.CurrMagAmmo, w.Stats.MagSize())
	if w.CurrTotalAmmo < delta {
		return
	}
	w.CurrTotalAmmo -= delta
	w.CurrMagAmmo += delta
}

// RefillTotal は予備をカタログの最大値に戻します。
func (w *Weapon) RefillTotal() {
	w.CurrTotalAmmo = w.Stats.TotalAmmo()
}

// RemainingAmmo はマガジン以外に残っている弾数です。
func (w *Weapon) RemainingAmmo() uint16 {
	if w.CurrTotalAmmo < w.CurrMagAmmo {
		return 0
	}
	return w.CurrTotalAmmo - w.CurrMagAmmo
}

func (w *Weapon) IsEmpty() bool {
	return w.CurrMagAmmo == 0
}

func (w *Weapon) EquipKey() KeyMask {
	return w.Stats.EquipKey()
}

// MuzzlePosition は銃口のワールド座標を返します。
// テクスチャ寸法にWeaponScaleを掛け、矩形の中心を軸にorientationだけ回転させます。
// 左向き (|角度| が90°超180°以下) のときはy方向のオフセットを反転します。
func (w *Weapon) MuzzlePosition(assets domain.AssetLookup, rect Rect, orientation float32) Vec2 {
	var width, height float32
	if assets != nil {
		if tw, th, ok := assets.TextureSize(w.Stats.Texture()); ok {
			width, height = tw*WeaponScale, th*WeaponScale
		}
	}

	origin := rect.Center()
	offsetY := (height / 2) * w.Stats.muzzleY
	deg := math.Abs(float64(orientation) * 180 / math.Pi)
	if deg > 90 && deg <= 180 {
		offsetY = -offsetY
	}
	local := Vec2{
		X: origin.X + rect.Width/2 + width*w.Stats.muzzleX,
		Y: origin.Y - offsetY,
	}
	return rotateAround(local, origin, orientation)
}

func rotateAround(p, origin Vec2, angle float32) Vec2 {
	sin, cos := math.Sincos(float64(angle))
	dx := float64(p.X - origin.X)
	dy := float64(p.Y - origin.Y)
	return Vec2{
		X: origin.X + float32(dx*cos-dy*sin),
		Y: origin.Y + float32(dx*sin+dy*cos),
	}
}
