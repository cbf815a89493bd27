package combat

import "strings"

// KeyMask は入力キーのビットマスクです。
type KeyMask uint16

const (
	KeyFire KeyMask = 1 << iota
	KeyReload
	KeyRestock
	KeyHeal
	KeyOne
	KeyTwo
	KeyThree
	KeyFour
)

var keyNames = [...]string{"fire", "reload", "restock", "heal", "1", "2", "3", "4"}

// Has はmaskのビットがすべて立っているかを返します。
func (k KeyMask) Has(mask KeyMask) bool {
	return mask != 0 && k&mask == mask
}

func (k KeyMask) String() string {
	if k == 0 {
		return "none"
	}
	var names []string
	for i, name := range keyNames {
		if k&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// FrameInput は1フレーム分の入力です。
// Heldは押し続けているキー、Pressedはこのフレームで押されたキーです。
type FrameInput struct {
	Orientation float32 // 照準の向き (ラジアン)
	Held        KeyMask
	Pressed     KeyMask
}
