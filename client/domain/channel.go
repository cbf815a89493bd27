package domain

// Channel はメッセージごとの信頼性ティアです。
// 実際の配送保証は外部のチャネル実装が持ち、このパッケージは種別ごとに選ぶだけです。
type Channel uint8

const (
	ChannelReliableOrdered Channel = iota
	ChannelReliableUnordered
	ChannelUnreliable
)

// Reliable は再送が前提のチャネルかどうかを返します。
func (c Channel) Reliable() bool {
	return c != ChannelUnreliable
}

func (c Channel) String() string {
	switch c {
	case ChannelReliableOrdered:
		return "reliable-ordered"
	case ChannelReliableUnordered:
		return "reliable-unordered"
	case ChannelUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// ChannelOf はメッセージ種別に対応する送信チャネルを返します。
//
//	control             -> reliable-ordered
//	combat/orientation  -> unreliable
//	combat/その他        -> reliable-unordered
func ChannelOf(p Payload) Channel {
	h := p.PayloadHeader()
	switch h.DataType {
	case DataTypeControl:
		return ChannelReliableOrdered
	case DataTypeCombat:
		if CombatSubType(h.SubType) == CombatSubTypeOrientation {
			return ChannelUnreliable
		}
		return ChannelReliableUnordered
	default:
		return ChannelReliableOrdered
	}
}
