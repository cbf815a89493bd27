package combat

import (
	"math"

	"github.com/google/uuid"

	"skirmish/client/domain"
)

const (
	// ProjectileSpeed は弾丸の1フレームあたりの移動量です。
	ProjectileSpeed float32 = 12
	// WorldTileSize はワールドのタイル1枚の大きさです。
	WorldTileSize float32 = 32
)

// ProjectileSpawnRequest は1発の弾の生成要求です。保存されず、ローカルの弾丸エンティティか
// ネットワークイベントに渡されたら捨てられます。
type ProjectileSpawnRequest struct {
	ID          uuid.UUID
	Position    Vec2
	Velocity    Vec2
	Grid        domain.GridCell
	Orientation float32
	Shooter     domain.SessionID
	Damage      uint8
}

// NewProjectileSpawn は銃口位置と向きから弾の生成要求を作ります。
func NewProjectileSpawn(position Vec2, orientation float32, shooter domain.SessionID, damage uint8) ProjectileSpawnRequest {
	sin, cos := math.Sincos(float64(orientation))
	return ProjectileSpawnRequest{
		ID:       uuid.New(),
		Position: position,
		Velocity: Vec2{
			X: ProjectileSpeed * float32(cos),
			Y: ProjectileSpeed * float32(sin),
		},
		Grid:        projectileGrid(position),
		Orientation: orientation,
		Shooter:     shooter,
		Damage:      damage,
	}
}

// projectileGrid は座標を丸めてからタイルサイズで割り、0方向に切り捨てます。
func projectileGrid(p Vec2) domain.GridCell {
	return domain.GridCell{
		X: int32(float32(math.Round(float64(p.X))) / WorldTileSize),
		Y: int32(float32(math.Round(float64(p.Y))) / WorldTileSize),
	}
}

// Payload は生成要求をネットワーク用のProjectileCreateに変換します。
func (r ProjectileSpawnRequest) Payload() *domain.ProjectileCreate {
	return &domain.ProjectileCreate{
		ID:          r.ID,
		Position:    domain.Position2D{X: r.Position.X, Y: r.Position.Y},
		Grid:        r.Grid,
		Velocity:    domain.Position2D{X: r.Velocity.X, Y: r.Velocity.Y},
		Orientation: r.Orientation,
		Shooter:     r.Shooter,
		Damage:      r.Damage,
	}
}
