package main

import (
	"skirmish/client/domain"
)

// staticAssets は描画を持たないクライアント向けの固定のテクスチャ寸法表です。
type staticAssets map[domain.TextureKey][2]float32

var defaultAssets = staticAssets{
	"weapon_dean_1911": {48, 32},
	"weapon_aka_69":    {96, 32},
	"weapon_shotpew":   {96, 24},
	"weapon_prrr":      {80, 36},
}

func (a staticAssets) TextureSize(key domain.TextureKey) (float32, float32, bool) {
	size, ok := a[key]
	if !ok {
		return 0, 0, false
	}
	return size[0], size[1], true
}
