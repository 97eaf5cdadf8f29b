package wheel

import (
	"math"
	"math/rand"
	"time"
)

// 回転アニメーションの長さ。結果の決定には関与しない（演出のみ）。
const SpinAnimationDuration = 4 * time.Second

// 1回のスピンで針が回る量（満回転数）
const (
	minSpins = 5
	maxSpins = 10
)

// Wheel は固定されたマスの並びを持つルーレットです。
// 選択は各参加者のローカルで完結し、他のクライアントとは共有されない。
type Wheel struct {
	wedges []Wedge
}

func New(wedges []Wedge) *Wheel {
	return &Wheel{wedges: wedges}
}

func Default() *Wheel {
	return New(DefaultWedges())
}

func (w *Wheel) Wedges() []Wedge {
	return w.wedges
}

// SpinResult はスピン1回の確定結果。回転量はアニメーション用、
// IndexとWedgeが当たったマスを表す。
type SpinResult struct {
	Rotation float64 // 累計回転角（度）
	Index    int
	Wedge    Wedge
}

// Spin は現在の累計回転角から次のスピンの結果を決定します。
// 加算される回転量は5回転以上10回転未満に[0°,360°)の一様な端数を足したもの。
// 当たるマスはここで同期的に確定し、アニメーションは純粋な演出として
// あとから流す。
func (w *Wheel) Spin(randGen *rand.Rand, currentRotation float64) SpinResult {
	spins := minSpins + randGen.Float64()*(maxSpins-minSpins)
	randomAngle := randGen.Float64() * 360
	totalRotation := currentRotation + spins*360 + randomAngle

	index := w.Landing(totalRotation)
	return SpinResult{
		Rotation: totalRotation,
		Index:    index,
		Wedge:    w.wedges[index],
	}
}

// Landing は回転角から針が指すマスの番号を求めます。
// index = floor((360 − rotation mod 360 + halfWedge) / wedgeWidth) mod N
func (w *Wheel) Landing(rotation float64) int {
	n := len(w.wedges)
	normalized := math.Mod(rotation, 360)
	wedgeWidth := 360.0 / float64(n)
	return int(math.Floor((360-normalized+wedgeWidth/2)/wedgeWidth)) % n
}
