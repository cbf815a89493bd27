package combat

import "slices"

// Inventory はプレイヤーの所持武器、選択中の武器、所持金を管理します。
// 選択中の武器は必ず所持している武器を指します。
type Inventory struct {
	Cash     uint32
	weapons  map[WeaponVariant]*Weapon
	selected *WeaponVariant
}

func NewInventory() *Inventory {
	return &Inventory{
		weapons: make(map[WeaponVariant]*Weapon),
	}
}

// Add は武器を追加し、置き換えた武器があれば返します。
func (inv *Inventory) Add(w *Weapon) (*Weapon, bool) {
	replaced, ok := inv.weapons[w.Variant]
	inv.weapons[w.Variant] = w
	return replaced, ok
}

// Remove は武器を取り除きます。選択中の武器だった場合は選択も外します。
func (inv *Inventory) Remove(v WeaponVariant) (*Weapon, bool) {
	w, ok := inv.weapons[v]
	if !ok {
		return nil, false
	}
	delete(inv.weapons, v)
	if inv.selected != nil && *inv.selected == v {
		inv.selected = nil
	}
	return w, true
}

func (inv *Inventory) Has(v WeaponVariant) bool {
	_, ok := inv.weapons[v]
	return ok
}

func (inv *Inventory) Get(v WeaponVariant) (*Weapon, bool) {
	w, ok := inv.weapons[v]
	return w, ok
}

// Select は所持している武器を選択します。未所持の場合は何もしません。
func (inv *Inventory) Select(v WeaponVariant) bool {
	if !inv.Has(v) {
		return false
	}
	inv.selected = &v
	return true
}

// Selected は選択中の武器を返します。
func (inv *Inventory) Selected() (*Weapon, bool) {
	if inv.selected == nil {
		return nil, false
	}
	return inv.Get(*inv.selected)
}

func (inv *Inventory) SelectedVariant() (WeaponVariant, bool) {
	if inv.selected == nil {
		return 0, false
	}
	return *inv.selected, true
}

// ResetWeapons は所持武器をすべて捨てて初期武器だけを持たせます。
// 選択は初期武器を選んでいた場合だけ残ります。
func (inv *Inventory) ResetWeapons() {
	clear(inv.weapons)
	inv.Add(NewWeapon(StarterVariant))
	if inv.selected != nil && !inv.Has(*inv.selected) {
		inv.selected = nil
	}
}

// RefillAmmo は選択中の武器の予備弾をカタログの最大値に戻します。
func (inv *Inventory) RefillAmmo() {
	if w, ok := inv.Selected(); ok {
		w.RefillTotal()
	}
}

func (inv *Inventory) CanAfford(cost uint32) bool {
	return inv.Cash >= cost
}

func (inv *Inventory) SetCash(cash uint32) {
	inv.Cash = cash
}

// Variants は所持している武器をワイヤー順で返します。
func (inv *Inventory) Variants() []WeaponVariant {
	variants := make([]WeaponVariant, 0, len(inv.weapons))
	for v := range inv.weapons {
		variants = append(variants, v)
	}
	slices.Sort(variants)
	return variants
}

func (inv *Inventory) Len() int {
	return len(inv.weapons)
}
