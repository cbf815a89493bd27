package combat

import "math/rand/v2"

// AccuracyTier は散弾のばらつき幅の段階です。
type AccuracyTier uint8

const (
	AccuracyLow AccuracyTier = iota
	AccuracyModerate
	AccuracyHigh
)

// 各段階の片側のばらつき幅 (ラジアン)
const (
	DeviationLow      float32 = 0.30
	DeviationModerate float32 = 0.10
	DeviationHigh     float32 = 0.01
)

// WeaponAccuracy は精度の段階と1回の射撃で出る弾数の組です。
type WeaponAccuracy struct {
	Tier    AccuracyTier
	pellets uint8
}

func Low(pellets uint8) WeaponAccuracy {
	return WeaponAccuracy{Tier: AccuracyLow, pellets: pellets}
}

func Moderate(pellets uint8) WeaponAccuracy {
	return WeaponAccuracy{Tier: AccuracyModerate, pellets: pellets}
}

func High(pellets uint8) WeaponAccuracy {
	return WeaponAccuracy{Tier: AccuracyHigh, pellets: pellets}
}

// Pellets は1回の射撃で出る弾数です。最低1を返します。
func (a WeaponAccuracy) Pellets() int {
	return max(int(a.pellets), 1)
}

// Deviation は段階に対応する片側のばらつき幅です。
func (a WeaponAccuracy) Deviation() float32 {
	switch a.Tier {
	case AccuracyModerate:
		return DeviationModerate
	case AccuracyHigh:
		return DeviationHigh
	default:
		return DeviationLow
	}
}

// DeviationAngles は基準の向きから弾数ぶんの向きを生成します。
// 各弾は theta + [-deviation, +deviation] の一様乱数で、呼び出すたびに新しいスライスを返します。
func (a WeaponAccuracy) DeviationAngles(theta float32) []float32 {
	d := a.Deviation()
	angles := make([]float32, a.Pellets())
	for i := range angles {
		angles[i] = theta + (rand.Float32()*2-1)*d
	}
	return angles
}
