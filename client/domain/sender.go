package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/sender_mock.go -package=mocks . Sender

// Sender は型付きメッセージをサーバーへ送る出口です。
// 実装はブロックしてはいけません。送信結果の確認や再送は行いません。
type Sender interface {
	Send(ctx context.Context, channel Channel, msg Payload) error
}
