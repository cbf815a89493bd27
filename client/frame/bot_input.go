package frame

import (
	"context"
	"math"
	"math/rand/v2"

	"skirmish/client/combat"
)

const (
	botNoiseAngle   float32 = 0.05 // 1フレームあたりの照準の揺れ (rad)
	botUpgradeEvery         = 60   // 武器の買い替えを検討する間隔 (フレーム)
)

// BotInput はルールベースで入力を組み立てるInputSourceです。
// 人の操作がないヘッドレスクライアントで使います。
type BotInput struct {
	TurnRate    float32 // 1フレームあたりの旋回量 (rad)
	BurstFrames int     // 連射と休止を切り替えるフレーム数

	aim   float32
	frame int
}

// NewBotInput はランダムな個性を持つBotInputを生成します。
func NewBotInput() *BotInput {
	turn := 0.02 + rand.Float32()*0.04
	if rand.Float64() < 0.5 {
		turn = -turn
	}
	return &BotInput{
		TurnRate:    turn,
		BurstFrames: 20 + rand.IntN(40),
	}
}

func (b *BotInput) Next(_ context.Context, p *combat.Player) combat.FrameInput {
	b.frame++
	b.aim = wrapAngle(b.aim + b.TurnRate + (rand.Float32()*2-1)*botNoiseAngle)
	in := combat.FrameInput{Orientation: b.aim}

	w, ok := p.Inventory.Selected()
	if !ok {
		// 何も持っていなければ初期武器を選ぶ
		in.Pressed |= combat.StatsOf(combat.StarterVariant).EquipKey()
		return in
	}

	if w.IsEmpty() && !p.Reloading {
		in.Pressed |= combat.KeyReload
		return in
	}
	if w.RemainingAmmo() == 0 && w.CurrTotalAmmo < w.Stats.TotalAmmo() {
		in.Pressed |= combat.KeyRestock
	}
	if p.Health < combat.MaxHealth/2 {
		in.Pressed |= combat.KeyHeal
	}
	if b.frame%botUpgradeEvery == 0 {
		if v, ok := b.upgrade(p, w); ok {
			in.Pressed |= combat.StatsOf(v).EquipKey()
		}
	}

	burst := max(b.BurstFrames, 1)
	if (b.frame/burst)%2 == 0 {
		in.Held |= combat.KeyFire
	}
	return in
}

// upgrade は今の武器より高価で、所持しているか買える武器のうち最も高価なものを返します。
func (b *BotInput) upgrade(p *combat.Player, current *combat.Weapon) (combat.WeaponVariant, bool) {
	var (
		best      combat.WeaponVariant
		bestPrice = current.Stats.Price()
		found     bool
	)
	for _, v := range combat.AllVariants {
		price := combat.StatsOf(v).Price()
		if price <= bestPrice {
			continue
		}
		if p.Inventory.Has(v) || p.Inventory.CanAfford(price) {
			best, bestPrice, found = v, price, true
		}
	}
	return best, found
}

func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
