package combat

import "time"

// Clock は単調増加する時刻の供給元です。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock はtime.Nowによる時計です。time.Nowはモノトニック時刻を含みます。
var SystemClock Clock = systemClock{}

// TimerKind はタイマーの用途です。
type TimerKind uint8

const (
	TimerWeaponFired TimerKind = iota
	TimerReloading
)

// TimerKey は発射間隔とリロードのタイマーを区別するキーです。
// 発射間隔は武器ごと、リロードは1つだけです。
type TimerKey struct {
	Kind    TimerKind
	Variant WeaponVariant
}

func FireTimer(v WeaponVariant) TimerKey {
	return TimerKey{Kind: TimerWeaponFired, Variant: v}
}

var ReloadTimer = TimerKey{Kind: TimerReloading}

// TimerRegistry はキーごとの開始時刻を保持するクールダウン管理です。
// フレームループのゴルーチンからのみ使う前提でロックは持ちません。
type TimerRegistry[K comparable] struct {
	clock  Clock
	starts map[K]time.Time
}

func NewTimerRegistry[K comparable](clock Clock) *TimerRegistry[K] {
	if clock == nil {
		clock = SystemClock
	}
	return &TimerRegistry[K]{
		clock:  clock,
		starts: make(map[K]time.Time),
	}
}

// Add は現在時刻をkeyの開始時刻として記録します。既存の値は上書きします。
func (r *TimerRegistry[K]) Add(key K) {
	r.starts[key] = r.clock.Now()
}

// After はkeyの開始からd以上経過していればtrueを返し、開始時刻を現在に戻します。
// 未登録のkeyはfalseです。
func (r *TimerRegistry[K]) After(key K, d time.Duration) bool {
	start, ok := r.starts[key]
	if !ok {
		return false
	}
	now := r.clock.Now()
	if now.Sub(start) < d {
		return false
	}
	r.starts[key] = now
	return true
}

// Elapsed はkeyの開始からの経過時間を返します。タイマーは戻しません。
func (r *TimerRegistry[K]) Elapsed(key K) (time.Duration, bool) {
	start, ok := r.starts[key]
	if !ok {
		return 0, false
	}
	return r.clock.Now().Sub(start), true
}

func (r *TimerRegistry[K]) Has(key K) bool {
	_, ok := r.starts[key]
	return ok
}

func (r *TimerRegistry[K]) Remove(key K) {
	delete(r.starts, key)
}

func (r *TimerRegistry[K]) Len() int {
	return len(r.starts)
}
