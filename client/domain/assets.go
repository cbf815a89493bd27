package domain

//go:generate go tool mockgen -destination=./mocks/assets_mock.go -package=mocks . AssetLookup

// TextureKey はテクスチャを引くためのキーです。
type TextureKey string

// AssetLookup は読み込み済みアセットの寸法を参照する読み取り専用の窓口です。
// 戦闘ロジックは描画を行わず、銃口位置の計算に幅と高さだけを使います。
type AssetLookup interface {
	TextureSize(key TextureKey) (width, height float32, ok bool)
}
