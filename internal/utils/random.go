package utils

import (
	"math/rand/v2"
)

// NewRand 根据种子创建随机数生成器，seed 为 0 时使用随机种子
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// DeriveRand 从 (seed, stream) 派生出一个独立的随机数流
// 同一个 (seed, stream) 总是得到同样的序列，用于保证并行繁殖时结果与并发度无关
func DeriveRand(seed uint64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
