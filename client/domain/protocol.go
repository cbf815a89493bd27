package domain

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	ProtocolVersion   = 1
	HeaderSize        = 25
	PayloadHeaderSize = 2
	JoinPayloadSize   = 16
)

// Header はメッセージヘッダー (25バイト)
//
//	version    u8      (1)
//	sessionID  [16]byte (16)
//	seq        u16     (2)
//	length     u16     (2)  - ペイロード長
//	timestamp  u32     (4)
type Header struct {
	Version   uint8
	SessionID [16]byte
	Seq       uint16
	Length    uint16
	Timestamp uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeControl DataType = 4
	DataTypeCombat  DataType = 6
)

// ControlSubType はcontrolメッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeJoin   ControlSubType = 1
	ControlSubTypeLeave  ControlSubType = 2
	ControlSubTypeKick   ControlSubType = 3
	ControlSubTypePing   ControlSubType = 4
	ControlSubTypePong   ControlSubType = 5
	ControlSubTypeError  ControlSubType = 6
	ControlSubTypeAssign ControlSubType = 7
)

// CombatSubType はcombatメッセージのサブタイプ
type CombatSubType uint8

// クライアント -> サーバー
const (
	CombatSubTypeProjectileCreate CombatSubType = 1
	CombatSubTypePlayerDied       CombatSubType = 2
	CombatSubTypeOrientation      CombatSubType = 3
	CombatSubTypeAmmoRestock      CombatSubType = 4
	CombatSubTypeHeal             CombatSubType = 5
	CombatSubTypeWeaponPurchase   CombatSubType = 6
	CombatSubTypeWeaponSelect     CombatSubType = 7
)

// サーバー -> クライアント
const (
	CombatSubTypeCashUpdate     CombatSubType = 16
	CombatSubTypeWeaponGrant    CombatSubType = 17
	CombatSubTypeAmmoRestocked  CombatSubType = 18
	CombatSubTypeInventoryReset CombatSubType = 19
	CombatSubTypeHealthUpdate   CombatSubType = 20
)

func (s CombatSubType) String() string {
	switch s {
	case CombatSubTypeProjectileCreate:
		return "projectile_create"
	case CombatSubTypePlayerDied:
		return "player_died"
	case CombatSubTypeOrientation:
		return "orientation"
	case CombatSubTypeAmmoRestock:
		return "ammo_restock"
	case CombatSubTypeHeal:
		return "heal"
	case CombatSubTypeWeaponPurchase:
		return "weapon_purchase"
	case CombatSubTypeWeaponSelect:
		return "weapon_select"
	case CombatSubTypeCashUpdate:
		return "cash_update"
	case CombatSubTypeWeaponGrant:
		return "weapon_grant"
	case CombatSubTypeAmmoRestocked:
		return "ammo_restocked"
	case CombatSubTypeInventoryReset:
		return "inventory_reset"
	case CombatSubTypeHealthUpdate:
		return "health_update"
	default:
		return "unknown"
	}
}

// PayloadHeader はペイロードヘッダー (2バイト)
//
//	datatype  u8 (1)
//	subtype   u8 (1)
type PayloadHeader struct {
	DataType DataType
	SubType  uint8
}

// Payload はヘッダーの後ろに載る型付きメッセージです。
type Payload interface {
	PayloadHeader() PayloadHeader
	Encode() ([]byte, error)
}

var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidPayloadSize = errors.New("invalid payload size")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrUnknownDataType    = errors.New("unknown data type")
	ErrUnknownSubType     = errors.New("unknown sub type")
	ErrNonFiniteValue     = errors.New("non-finite float value")
)

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	var sessionID [16]byte
	copy(sessionID[:], data[1:17])

	return &Header{
		Version:   data[0],
		SessionID: sessionID,
		Seq:       byteOrder.Uint16(data[17:19]),
		Length:    byteOrder.Uint16(data[19:21]),
		Timestamp: byteOrder.Uint32(data[21:25]),
	}, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	copy(data[1:17], h.SessionID[:])
	byteOrder.PutUint16(data[17:19], h.Seq)
	byteOrder.PutUint16(data[19:21], h.Length)
	byteOrder.PutUint32(data[21:25], h.Timestamp)
	return data
}

// ParsePayloadHeader はバイト列からPayloadHeaderをパースする
func ParsePayloadHeader(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrInvalidPayloadSize
	}

	return &PayloadHeader{
		DataType: DataType(data[0]),
		SubType:  data[1],
	}, nil
}

// Encode はPayloadHeaderをバイト列にエンコードする
func (p *PayloadHeader) Encode() []byte {
	data := make([]byte, PayloadHeaderSize)
	data[0] = byte(p.DataType)
	data[1] = p.SubType
	return data
}

// EncodeMessage はヘッダーを付けてメッセージ全体をエンコードする
// ペイロードのエンコードに失敗した場合はそのエラーを返す
func EncodeMessage(sessionID SessionID, seq uint16, p Payload) ([]byte, error) {
	body, err := p.Encode()
	if err != nil {
		return nil, err
	}
	length := PayloadHeaderSize + len(body)
	if length > math.MaxUint16 {
		return nil, ErrPayloadTooLarge
	}

	header := Header{
		Version:   ProtocolVersion,
		SessionID: sessionID.Bytes(),
		Seq:       seq,
		Length:    uint16(length),
		Timestamp: uint32(time.Now().UnixMilli() & 0xFFFFFFFF),
	}
	payloadHeader := p.PayloadHeader()

	data := make([]byte, 0, HeaderSize+length)
	data = append(data, header.Encode()...)
	data = append(data, payloadHeader.Encode()...)
	data = append(data, body...)
	return data, nil
}

// DecodeMessage はバイト列をヘッダーと型付きペイロードに分解する
func DecodeMessage(data []byte) (*Header, Payload, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, nil, err
	}
	payloadHeader, err := ParsePayloadHeader(data[HeaderSize:])
	if err != nil {
		return nil, nil, err
	}
	body := data[HeaderSize+PayloadHeaderSize:]

	switch payloadHeader.DataType {
	case DataTypeControl:
		p, err := ParseControlPayload(ControlSubType(payloadHeader.SubType), body)
		if err != nil {
			return nil, nil, err
		}
		return header, p, nil
	case DataTypeCombat:
		p, err := ParseCombatPayload(CombatSubType(payloadHeader.SubType), body)
		if err != nil {
			return nil, nil, err
		}
		return header, p, nil
	default:
		return nil, nil, ErrUnknownDataType
	}
}

// ControlMessage はペイロードを持たない制御メッセージ (ping/pong/assign/leave など)
type ControlMessage struct {
	SubType ControlSubType
}

func (c ControlMessage) PayloadHeader() PayloadHeader {
	return PayloadHeader{DataType: DataTypeControl, SubType: uint8(c.SubType)}
}

func (c ControlMessage) Encode() ([]byte, error) {
	return nil, nil
}

// RoomID はルームの識別子 (UUID)。ゼロ値はサーバー側の自動割り当てを意味する
type RoomID [16]byte

func (r RoomID) IsEmpty() bool {
	return r == RoomID{}
}

// JoinPayload はルーム参加メッセージのペイロード (16バイト)
//
//	roomID  [16]byte  - ルームID (UUID)
type JoinPayload struct {
	RoomID RoomID
}

var ErrInvalidJoinPayloadSize = errors.New("invalid join payload size")

// ParseJoinPayload はバイト列からJoinPayloadをパースする
func ParseJoinPayload(data []byte) (*JoinPayload, error) {
	if len(data) < JoinPayloadSize {
		return nil, ErrInvalidJoinPayloadSize
	}

	var roomID RoomID
	copy(roomID[:], data[:JoinPayloadSize])

	return &JoinPayload{
		RoomID: roomID,
	}, nil
}

func (j *JoinPayload) PayloadHeader() PayloadHeader {
	return PayloadHeader{DataType: DataTypeControl, SubType: uint8(ControlSubTypeJoin)}
}

// Encode はJoinPayloadをバイト列にエンコードする
func (j *JoinPayload) Encode() ([]byte, error) {
	data := make([]byte, JoinPayloadSize)
	copy(data, j.RoomID[:])
	return data, nil
}

// ParseControlPayload はcontrolサブタイプに応じてペイロードをパースする
func ParseControlPayload(subType ControlSubType, data []byte) (Payload, error) {
	switch subType {
	case ControlSubTypeJoin:
		return ParseJoinPayload(data)
	case ControlSubTypeLeave, ControlSubTypeKick, ControlSubTypePing,
		ControlSubTypePong, ControlSubTypeError, ControlSubTypeAssign:
		return ControlMessage{SubType: subType}, nil
	default:
		return nil, ErrUnknownSubType
	}
}

// サイズ定数
const (
	Position2DSize = 8 // 2 * float32
	GridCellSize   = 8 // 2 * int32
)

// Position2D は2D位置データ (8バイト)
//
//	x, y float32 (8) - 位置
type Position2D struct {
	X, Y float32
}

var ErrInvalidPosition2DData = errors.New("invalid position2d data: expected 8 bytes")

// ParsePosition2D はバイト列からPosition2Dをパースする
func ParsePosition2D(data []byte) (*Position2D, error) {
	if len(data) < Position2DSize {
		return nil, ErrInvalidPosition2DData
	}

	return &Position2D{
		X: math.Float32frombits(byteOrder.Uint32(data[0:4])),
		Y: math.Float32frombits(byteOrder.Uint32(data[4:8])),
	}, nil
}

// Encode はPosition2Dをバイト列にエンコードする
func (p *Position2D) Encode() []byte {
	buf := make([]byte, Position2DSize)
	byteOrder.PutUint32(buf[0:4], math.Float32bits(p.X))
	byteOrder.PutUint32(buf[4:8], math.Float32bits(p.Y))
	return buf
}

// GridCell はワールドのタイル座標 (8バイト)
//
//	x, y int32 (8)
type GridCell struct {
	X, Y int32
}

var ErrInvalidGridCellData = errors.New("invalid grid cell data: expected 8 bytes")

// ParseGridCell はバイト列からGridCellをパースする
func ParseGridCell(data []byte) (*GridCell, error) {
	if len(data) < GridCellSize {
		return nil, ErrInvalidGridCellData
	}

	return &GridCell{
		X: int32(byteOrder.Uint32(data[0:4])),
		Y: int32(byteOrder.Uint32(data[4:8])),
	}, nil
}

// Encode はGridCellをバイト列にエンコードする
func (g *GridCell) Encode() []byte {
	buf := make([]byte, GridCellSize)
	byteOrder.PutUint32(buf[0:4], uint32(g.X))
	byteOrder.PutUint32(buf[4:8], uint32(g.Y))
	return buf
}
