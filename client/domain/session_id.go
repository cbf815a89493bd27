package domain

import "github.com/google/uuid"

// SessionID はサーバーから割り当てられるプレイヤーの識別子です。
// ワイヤー上では16バイトのUUIDとして扱います。
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// SessionIDFromBytes は16バイト表現からSessionIDを復元します。
func SessionIDFromBytes(b [16]byte) SessionID {
	return SessionID(uuid.UUID(b).String())
}

// Bytes はワイヤー用の16バイト表現を返します。パースできない場合はゼロ値です。
func (id SessionID) Bytes() [16]byte {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return [16]byte{}
	}
	return u
}

func (id SessionID) IsEmpty() bool {
	return id == ""
}

func (id SessionID) String() string {
	return string(id)
}
