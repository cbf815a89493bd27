package combat

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"skirmish/client/domain"
	"skirmish/client/domain/mocks"
)

type sentMessage struct {
	channel domain.Channel
	msg     domain.Payload
}

type sendLog struct {
	messages []sentMessage
}

func (l *sendLog) ofType(sub domain.CombatSubType) []sentMessage {
	var out []sentMessage
	for _, m := range l.messages {
		h := m.msg.PayloadHeader()
		if h.DataType == domain.DataTypeCombat && domain.CombatSubType(h.SubType) == sub {
			out = append(out, m)
		}
	}
	return out
}

func (l *sendLog) reset() { l.messages = nil }

func newTestPlayer(t *testing.T) (*Player, *fakeClock, *sendLog) {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := &sendLog{}
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ch domain.Channel, msg domain.Payload) error {
			log.messages = append(log.messages, sentMessage{channel: ch, msg: msg})
			return nil
		}).AnyTimes()

	clock := newFakeClock()
	p := NewPlayer("tester", sender, nil, WithClock(clock))
	p.Activate(domain.NewSessionID())
	return p, clock, log
}

func grant(t *testing.T, p *Player, v WeaponVariant) *Weapon {
	t.Helper()
	p.Apply(context.Background(), &domain.WeaponGrant{Variant: uint8(v)})
	w, ok := p.Inventory.Selected()
	if !ok || w.Variant != v {
		t.Fatalf("selected after grant = %v, %v, want %v", w, ok, v)
	}
	return w
}

var fire = FrameInput{Held: KeyFire}

// AKA_69を150ms間隔で3回撃つと 30→29→28→27 になり、毎回1発ずつ生成される
func TestPlayer_AKA69ThreeShots(t *testing.T) {
	p, clock, log := newTestPlayer(t)
	ctx := context.Background()
	w := grant(t, p, VariantAKA69)

	for _, want := range []uint16{29, 28, 27} {
		clock.Advance(150 * time.Millisecond)
		res, err := p.Update(ctx, fire)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if len(res.Spawns) != 1 {
			t.Errorf("len(Spawns) = %d, want 1", len(res.Spawns))
		}
		if w.CurrMagAmmo != want {
			t.Errorf("CurrMagAmmo = %d, want %d", w.CurrMagAmmo, want)
		}
	}

	created := log.ofType(domain.CombatSubTypeProjectileCreate)
	if len(created) != 3 {
		t.Fatalf("ProjectileCreate sent %d times, want 3", len(created))
	}
	for _, m := range created {
		if m.channel != domain.ChannelReliableUnordered {
			t.Errorf("channel = %v, want %v", m.channel, domain.ChannelReliableUnordered)
		}
		pc := m.msg.(*domain.ProjectileCreate)
		if pc.Damage != 40 || pc.Shooter != p.ID {
			t.Errorf("ProjectileCreate = %+v, want damage 40 shooter %v", pc, p.ID)
		}
	}
}

func TestPlayer_FireFasterThanFireTimeRejected(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	ctx := context.Background()
	w := grant(t, p, VariantAKA69)

	clock.Advance(150 * time.Millisecond)
	if _, err := p.Update(ctx, fire); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	clock.Advance(50 * time.Millisecond)
	res, _ := p.Update(ctx, fire)
	if len(res.Spawns) != 0 || w.CurrMagAmmo != 29 {
		t.Errorf("early shot: spawns = %d, mag = %d, want 0, 29", len(res.Spawns), w.CurrMagAmmo)
	}
	if res.State != StateCooling {
		t.Errorf("State = %v, want %v", res.State, StateCooling)
	}

	clock.Advance(50 * time.Millisecond)
	res, _ = p.Update(ctx, fire)
	if len(res.Spawns) != 1 || w.CurrMagAmmo != 28 {
		t.Errorf("after cooldown: spawns = %d, mag = %d, want 1, 28", len(res.Spawns), w.CurrMagAmmo)
	}
}

func TestPlayer_FirstCheckOnUnarmedTimerArms(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	ctx := context.Background()

	p.Inventory.Add(NewWeapon(VariantAKA69))
	p.Inventory.Select(VariantAKA69)
	w, _ := p.Inventory.Selected()

	res, _ := p.Update(ctx, fire)
	if len(res.Spawns) != 0 || w.CurrMagAmmo != 30 {
		t.Errorf("first pull: spawns = %d, mag = %d, want 0, 30", len(res.Spawns), w.CurrMagAmmo)
	}

	clock.Advance(100 * time.Millisecond)
	res, _ = p.Update(ctx, fire)
	if len(res.Spawns) != 1 || w.CurrMagAmmo != 29 {
		t.Errorf("second pull: spawns = %d, mag = %d, want 1, 29", len(res.Spawns), w.CurrMagAmmo)
	}
}

// 5発の散弾は1回で5つ生成され、マガジンは1だけ減る
func TestPlayer_ShotpewFiresFivePellets(t *testing.T) {
	p, clock, log := newTestPlayer(t)
	w := grant(t, p, VariantShotpew)

	clock.Advance(300 * time.Millisecond)
	res, err := p.Update(context.Background(), fire)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(res.Spawns) != 5 {
		t.Errorf("len(Spawns) = %d, want 5", len(res.Spawns))
	}
	if w.CurrMagAmmo != 4 {
		t.Errorf("CurrMagAmmo = %d, want 4", w.CurrMagAmmo)
	}
	if n := len(log.ofType(domain.CombatSubTypeProjectileCreate)); n != 5 {
		t.Errorf("ProjectileCreate sent %d times, want 5", n)
	}
	ids := make(map[[16]byte]bool)
	for _, s := range res.Spawns {
		ids[s.ID] = true
		if s.Orientation < -DeviationLow-angleEpsilon || s.Orientation > DeviationLow+angleEpsilon {
			t.Errorf("pellet orientation = %v, want within ±%v", s.Orientation, DeviationLow)
		}
	}
	if len(ids) != 5 {
		t.Errorf("unique ids = %d, want 5", len(ids))
	}
}

func TestPlayer_LastRoundDoesNotSpawn(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	w := grant(t, p, VariantDean1911)
	w.CurrMagAmmo = 1

	clock.Advance(300 * time.Millisecond)
	res, _ := p.Update(context.Background(), fire)
	if len(res.Spawns) != 0 || w.CurrMagAmmo != 0 {
		t.Errorf("spawns = %d, mag = %d, want 0, 0", len(res.Spawns), w.CurrMagAmmo)
	}

	clock.Advance(300 * time.Millisecond)
	res, _ = p.Update(context.Background(), fire)
	if len(res.Spawns) != 0 || w.CurrMagAmmo != 0 {
		t.Errorf("empty magazine: spawns = %d, mag = %d, want 0, 0", len(res.Spawns), w.CurrMagAmmo)
	}
}

func TestPlayer_ReloadFullMagazine(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	ctx := context.Background()
	w := grant(t, p, VariantAKA69)

	res, _ := p.Update(ctx, FrameInput{Pressed: KeyReload})
	if !p.Reloading || res.State != StateReloading {
		t.Fatalf("Reloading = %v, State = %v, want true, reloading", p.Reloading, res.State)
	}

	clock.Advance(900 * time.Millisecond)
	p.Update(ctx, FrameInput{})

	if p.Reloading {
		t.Error("Reloading should clear after reload time")
	}
	if w.CurrMagAmmo != 30 || w.CurrTotalAmmo != 120 {
		t.Errorf("ammo = (%d, %d), want (30, 120)", w.CurrMagAmmo, w.CurrTotalAmmo)
	}
}

func TestPlayer_ReloadBlocksFireAndTransfers(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	ctx := context.Background()
	w := grant(t, p, VariantAKA69)
	w.CurrMagAmmo = 10

	p.Update(ctx, FrameInput{Pressed: KeyReload})

	clock.Advance(500 * time.Millisecond)
	res, _ := p.Update(ctx, fire)
	if len(res.Spawns) != 0 || w.CurrMagAmmo != 10 {
		t.Errorf("fire while reloading: spawns = %d, mag = %d, want 0, 10", len(res.Spawns), w.CurrMagAmmo)
	}

	clock.Advance(400 * time.Millisecond)
	p.Update(ctx, FrameInput{})
	if p.Reloading {
		t.Error("Reloading should clear")
	}
	if w.CurrMagAmmo != 30 || w.CurrTotalAmmo != 100 {
		t.Errorf("ammo = (%d, %d), want (30, 100)", w.CurrMagAmmo, w.CurrTotalAmmo)
	}
}

func TestPlayer_ReloadWithoutReserveStillClears(t *testing.T) {
	p, clock, _ := newTestPlayer(t)
	ctx := context.Background()
	w := grant(t, p, VariantDean1911)
	w.CurrMagAmmo, w.CurrTotalAmmo = 0, 3

	p.Update(ctx, FrameInput{Pressed: KeyReload})
	clock.Advance(500 * time.Millisecond)
	p.Update(ctx, FrameInput{})

	if p.Reloading {
		t.Error("Reloading should clear even without reserve")
	}
	if w.CurrMagAmmo != 0 || w.CurrTotalAmmo != 3 {
		t.Errorf("ammo = (%d, %d), want (0, 3)", w.CurrMagAmmo, w.CurrTotalAmmo)
	}
}

func TestPlayer_NotReadySendsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	p := NewPlayer("tester", sender, nil)
	if _, err := p.Update(context.Background(), FrameInput{Held: KeyFire, Pressed: KeyHeal | KeyTwo}); err != nil {
		t.Errorf("Update failed: %v", err)
	}
}

func TestPlayer_OrientationUnreliable(t *testing.T) {
	p, _, log := newTestPlayer(t)

	p.Update(context.Background(), FrameInput{Orientation: 1.25})

	sent := log.ofType(domain.CombatSubTypeOrientation)
	if len(sent) != 1 {
		t.Fatalf("Orientation sent %d times, want 1", len(sent))
	}
	if sent[0].channel != domain.ChannelUnreliable {
		t.Errorf("channel = %v, want %v", sent[0].channel, domain.ChannelUnreliable)
	}
	if o := sent[0].msg.(*domain.OrientationUpdate); o.Orientation != 1.25 || o.PlayerID != p.ID {
		t.Errorf("OrientationUpdate = %+v, want orientation 1.25 for %v", o, p.ID)
	}
}

func TestPlayer_DeathSendsPlayerDiedOnce(t *testing.T) {
	p, _, log := newTestPlayer(t)
	ctx := context.Background()
	p.Apply(ctx, &domain.HealthUpdate{Health: 0})

	p.Update(ctx, FrameInput{Orientation: 2})
	p.Update(ctx, FrameInput{Orientation: 2})

	if n := len(log.ofType(domain.CombatSubTypePlayerDied)); n != 1 {
		t.Errorf("PlayerDied sent %d times, want 1", n)
	}
	if n := len(log.ofType(domain.CombatSubTypeOrientation)); n != 0 {
		t.Errorf("Orientation sent %d times while dead, want 0", n)
	}

	p.Apply(ctx, &domain.HealthUpdate{Health: MaxHealth})
	p.Apply(ctx, &domain.HealthUpdate{Health: 0})
	p.Update(ctx, FrameInput{})
	if n := len(log.ofType(domain.CombatSubTypePlayerDied)); n != 2 {
		t.Errorf("PlayerDied after second death sent %d times, want 2", n)
	}
}

// PlayerDiedの送信に失敗したら次のフレームで再送する
func TestPlayer_PlayerDiedRetriedAfterSendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	log := &sendLog{}
	full := true
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ch domain.Channel, msg domain.Payload) error {
			if full {
				return domain.ErrBackpressure
			}
			log.messages = append(log.messages, sentMessage{channel: ch, msg: msg})
			return nil
		}).AnyTimes()

	p := NewPlayer("tester", sender, nil, WithClock(newFakeClock()))
	p.Activate(domain.NewSessionID())
	ctx := context.Background()
	p.Apply(ctx, &domain.HealthUpdate{Health: 0})

	if _, err := p.Update(ctx, FrameInput{}); !errors.Is(err, domain.ErrBackpressure) {
		t.Fatalf("Update() = %v, want %v", err, domain.ErrBackpressure)
	}

	full = false
	for range 3 {
		if _, err := p.Update(ctx, FrameInput{}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	died := log.ofType(domain.CombatSubTypePlayerDied)
	if len(died) != 1 {
		t.Fatalf("PlayerDied sent %d times, want 1", len(died))
	}
	if got := died[0].msg.(*domain.PlayerDied).PlayerID; got != p.ID {
		t.Errorf("PlayerDied.PlayerID = %v, want %v", got, p.ID)
	}
}

// リロード中に選択中の武器が外されたらリロードを打ち切り、持ち替えを受け付ける
func TestPlayer_ReloadCancelledWhenSelectedWeaponRemoved(t *testing.T) {
	p, _, log := newTestPlayer(t)
	ctx := context.Background()
	p.Apply(ctx, &domain.WeaponGrant{Variant: uint8(VariantDean1911)})
	grant(t, p, VariantAKA69)

	p.Update(ctx, FrameInput{Pressed: KeyReload})
	if !p.Reloading {
		t.Fatalf("Reloading = false, want true")
	}

	p.Inventory.Remove(VariantAKA69)
	res, _ := p.Update(ctx, FrameInput{Pressed: KeyOne})

	if p.Reloading {
		t.Errorf("Reloading = true after selected weapon was removed, want false")
	}
	if res.State == StateReloading {
		t.Errorf("State = %v, want not %v", res.State, StateReloading)
	}
	if v, ok := p.Inventory.SelectedVariant(); !ok || v != VariantDean1911 {
		t.Errorf("SelectedVariant() = %v, %v, want %v, true", v, ok, VariantDean1911)
	}
	if n := len(log.ofType(domain.CombatSubTypeWeaponSelect)); n != 1 {
		t.Errorf("WeaponSelect sent %d times, want 1", n)
	}
}

func TestPlayer_EquipKeys(t *testing.T) {
	tests := []struct {
		name         string
		cash         uint32
		pressed      KeyMask
		wantSelect   int
		wantPurchase int
		wantSelected WeaponVariant
	}{
		{"owned weapon is selected and broadcast", 0, KeyOne, 1, 0, VariantDean1911},
		{"unowned affordable weapon is requested", 2700, KeyTwo, 0, 1, VariantDean1911},
		{"unowned unaffordable weapon is ignored", 2699, KeyTwo, 0, 0, VariantDean1911},
		{"several keys in one frame", 6000, KeyOne | KeyFour, 1, 1, VariantDean1911},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, log := newTestPlayer(t)
			ctx := context.Background()
			p.Apply(ctx, domain.InventoryReset{})
			p.Apply(ctx, &domain.CashUpdate{Cash: tt.cash})

			p.Update(ctx, FrameInput{Pressed: tt.pressed})

			if n := len(log.ofType(domain.CombatSubTypeWeaponSelect)); n != tt.wantSelect {
				t.Errorf("WeaponSelect sent %d times, want %d", n, tt.wantSelect)
			}
			if n := len(log.ofType(domain.CombatSubTypeWeaponPurchase)); n != tt.wantPurchase {
				t.Errorf("WeaponPurchase sent %d times, want %d", n, tt.wantPurchase)
			}
			if tt.wantSelect > 0 {
				v, ok := p.Inventory.SelectedVariant()
				if !ok || v != tt.wantSelected {
					t.Errorf("SelectedVariant() = %v, %v, want %v", v, ok, tt.wantSelected)
				}
			}
		})
	}
}

func TestPlayer_EquipIgnoredWhileReloading(t *testing.T) {
	p, _, log := newTestPlayer(t)
	ctx := context.Background()
	grant(t, p, VariantAKA69)
	p.Apply(ctx, &domain.WeaponGrant{Variant: uint8(VariantDean1911)})
	p.SelectWeapon(VariantAKA69)

	p.Update(ctx, FrameInput{Pressed: KeyReload | KeyOne})

	if n := len(log.ofType(domain.CombatSubTypeWeaponSelect)); n != 0 {
		t.Errorf("WeaponSelect sent %d times while reloading, want 0", n)
	}
	if v, _ := p.Inventory.SelectedVariant(); v != VariantAKA69 {
		t.Errorf("SelectedVariant() = %v, want %v", v, VariantAKA69)
	}
}

func TestPlayer_RestockAndHeal(t *testing.T) {
	tests := []struct {
		name        string
		cash        uint32
		health      uint8
		spendAmmo   bool
		wantRestock int
		wantHeal    int
	}{
		{"both affordable and needed", 1000, 50, true, 1, 1},
		{"full reserve and health", 1000, MaxHealth, false, 0, 0},
		{"too poor", 100, 50, true, 0, 0},
		{"heal only", HealCost, 50, true, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, log := newTestPlayer(t)
			ctx := context.Background()
			w := grant(t, p, VariantAKA69)
			if tt.spendAmmo {
				w.CurrTotalAmmo--
			}
			p.Apply(ctx, &domain.CashUpdate{Cash: tt.cash})
			p.Apply(ctx, &domain.HealthUpdate{Health: tt.health})

			p.Update(ctx, FrameInput{Pressed: KeyRestock | KeyHeal})

			if n := len(log.ofType(domain.CombatSubTypeAmmoRestock)); n != tt.wantRestock {
				t.Errorf("AmmoRestock sent %d times, want %d", n, tt.wantRestock)
			}
			heals := log.ofType(domain.CombatSubTypeHeal)
			if len(heals) != tt.wantHeal {
				t.Errorf("Heal sent %d times, want %d", len(heals), tt.wantHeal)
			}
			for _, h := range heals {
				if h.msg.(*domain.HealRequest).PlayerID != p.ID {
					t.Errorf("HealRequest.PlayerID = %v, want %v", h.msg.(*domain.HealRequest).PlayerID, p.ID)
				}
			}
		})
	}
}

func TestPlayer_SendErrorsAreJoined(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrBackpressure).AnyTimes()

	clock := newFakeClock()
	p := NewPlayer("tester", sender, nil, WithClock(clock))
	p.Activate(domain.NewSessionID())
	w := grant(t, p, VariantShotpew)

	clock.Advance(300 * time.Millisecond)
	res, err := p.Update(context.Background(), fire)
	if !errors.Is(err, domain.ErrBackpressure) {
		t.Fatalf("err = %v, want %v", err, domain.ErrBackpressure)
	}
	if len(res.Spawns) != 5 || w.CurrMagAmmo != 4 {
		t.Errorf("local state should stand: spawns = %d, mag = %d, want 5, 4", len(res.Spawns), w.CurrMagAmmo)
	}
}

func TestPlayer_Apply(t *testing.T) {
	p, _, _ := newTestPlayer(t)
	ctx := context.Background()

	p.Apply(ctx, &domain.CashUpdate{Cash: 1234})
	if p.Inventory.Cash != 1234 {
		t.Errorf("Cash = %d, want 1234", p.Inventory.Cash)
	}

	p.Apply(ctx, &domain.WeaponGrant{Variant: 200})
	if p.Inventory.Len() != 0 {
		t.Errorf("unknown variant should be ignored, Len() = %d", p.Inventory.Len())
	}

	w := grant(t, p, VariantPRRR)
	w.CurrTotalAmmo = 0
	p.Apply(ctx, domain.AmmoRestocked{})
	if w.CurrTotalAmmo != w.Stats.TotalAmmo() {
		t.Errorf("CurrTotalAmmo = %d, want %d", w.CurrTotalAmmo, w.Stats.TotalAmmo())
	}

	p.Reloading = true
	p.Apply(ctx, domain.InventoryReset{})
	if p.Reloading {
		t.Error("Reloading should clear on inventory reset")
	}
	if !p.Inventory.Has(StarterVariant) || p.Inventory.Len() != 1 {
		t.Errorf("Variants() = %v, want [%v]", p.Inventory.Variants(), StarterVariant)
	}
}

func TestPlayer_MoveTo(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	got := p.MoveTo(Vec2{X: 80, Y: 47})

	if got != (Vec2{X: 80, Y: 47}) || p.Rect.Position != got {
		t.Errorf("MoveTo() = %+v, Rect.Position = %+v, want {80 47}", got, p.Rect.Position)
	}
	// 80/32 = 2.5 -> 3, 47/32 = 1.47 -> 1
	if p.Grid != (domain.GridCell{X: 3, Y: 1}) {
		t.Errorf("Grid = %+v, want {3 1}", p.Grid)
	}
}
