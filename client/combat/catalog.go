package combat

import (
	"errors"
	"fmt"
	"time"

	"skirmish/client/domain"
)

// WeaponVariant は武器の種類です。値はそのままワイヤー上の識別子になります。
type WeaponVariant uint8

const (
	VariantDean1911 WeaponVariant = iota
	VariantAKA69
	VariantShotpew
	VariantPRRR
)

// StarterVariant はリスポーン時に必ず支給される武器です。
const StarterVariant = VariantDean1911

// AllVariants はワイヤー順の全武器です。
var AllVariants = [...]WeaponVariant{VariantDean1911, VariantAKA69, VariantShotpew, VariantPRRR}

var ErrUnknownVariant = errors.New("unknown weapon variant")

func (v WeaponVariant) String() string {
	switch v {
	case VariantDean1911:
		return "DEAN_1911"
	case VariantAKA69:
		return "AKA_69"
	case VariantShotpew:
		return "SHOTPEW"
	case VariantPRRR:
		return "PRRR"
	default:
		return "unknown"
	}
}

// ParseVariant はワイヤー上の1バイトをWeaponVariantに変換します。
func ParseVariant(b uint8) (WeaponVariant, error) {
	v := WeaponVariant(b)
	if int(v) >= len(catalog) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVariant, b)
	}
	return v, nil
}

// WeaponStats は武器ごとの不変の性能表です。
type WeaponStats struct {
	name       string
	damage     uint8
	accuracy   WeaponAccuracy
	fireTime   time.Duration
	reloadTime time.Duration
	magSize    uint16
	totalAmmo  uint16
	price      uint32

	texture  domain.TextureKey
	muzzleX  float32 // テクスチャ幅に対する銃口の比率
	muzzleY  float32 // テクスチャ高さの半分に対する銃口の比率
	equipKey KeyMask
}

func (s *WeaponStats) Name() string               { return s.name }
func (s *WeaponStats) Damage() uint8              { return s.damage }
func (s *WeaponStats) Accuracy() WeaponAccuracy   { return s.accuracy }
func (s *WeaponStats) FireTime() time.Duration    { return s.fireTime }
func (s *WeaponStats) ReloadTime() time.Duration  { return s.reloadTime }
func (s *WeaponStats) MagSize() uint16            { return s.magSize }
func (s *WeaponStats) TotalAmmo() uint16          { return s.totalAmmo }
func (s *WeaponStats) Price() uint32              { return s.price }
func (s *WeaponStats) Texture() domain.TextureKey { return s.texture }
func (s *WeaponStats) EquipKey() KeyMask          { return s.equipKey }

func newStats(name string, damage uint8, accuracy WeaponAccuracy, fire, reload time.Duration, magSize, mags uint16, price uint32) WeaponStats {
	return WeaponStats{
		name:       name,
		damage:     damage,
		accuracy:   accuracy,
		fireTime:   fire,
		reloadTime: reload,
		magSize:    magSize,
		totalAmmo:  magSize * mags,
		price:      price,
	}
}

var catalog = func() [4]WeaponStats {
	dean := newStats("DEAN 1911", 25, High(1), 300*time.Millisecond, 500*time.Millisecond, 7, 4, 400)
	dean.texture, dean.muzzleX, dean.muzzleY, dean.equipKey = "weapon_dean_1911", 0.942, 0.685, KeyOne

	aka := newStats("AKA-69", 40, Moderate(1), 100*time.Millisecond, 900*time.Millisecond, 30, 4, 2700)
	aka.texture, aka.muzzleX, aka.muzzleY, aka.equipKey = "weapon_aka_69", 0.988, 0.173, KeyTwo

	shotpew := newStats("PUMP Shotpew", 25, Low(5), 300*time.Millisecond, 1800*time.Millisecond, 5, 5, 2100)
	shotpew.texture, shotpew.muzzleX, shotpew.muzzleY, shotpew.equipKey = "weapon_shotpew", 0.988, 0.046, KeyThree

	prrr := newStats("PRRR", 45, Low(1), 50*time.Millisecond, 1500*time.Millisecond, 30, 4, 5200)
	prrr.texture, prrr.muzzleX, prrr.muzzleY, prrr.equipKey = "weapon_prrr", 0.988, 0.372, KeyFour

	return [4]WeaponStats{dean, aka, shotpew, prrr}
}()

// StatsOf は武器の性能表を返します。vはParseVariantで検証済みである必要があります。
func StatsOf(v WeaponVariant) *WeaponStats {
	return &catalog[v]
}
