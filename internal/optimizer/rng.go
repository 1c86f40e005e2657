package optimizer

import (
	"math/rand"
	"time"
)

// resolveSeed: 种子为 0 时使用当前时间，结果不可复现
func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// deriveSeed 把父种子和流编号混合成新的种子（SplitMix64 的终结函数）
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// deriveRNG 为某个算法创建独立的随机数流
// 注意 *rand.Rand 不是并发安全的，每个算法只能使用自己的那一个
func deriveRNG(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(seed, stream)))
}

// uniform 返回 [lo, hi) 上的均匀分布随机数
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
