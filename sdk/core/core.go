// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "math/bits"

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 為什麼要求同時提供 4 個方法（Uint64 / Float64 / UintN / IntN），而不是只要求 Uint64？
//
//  1. 不同 PRNG 對 bounded 生成可能有更快/更正確的實作。
//     把 IntN/UintN 交由 PRNG 自己實作，能讓每個 PRNG 用最合適的 bounded 策略。
//  2. Float64 的精度與生成方式應由 PRNG 決定（例如 32-bit 快路徑 vs 53-bit 尾數）。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 也就是相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// 為什麼只保留 New？
	//   - Randlab 需要可重現（審計/回放/併發模擬的多產生器派生）。
	//   - seed 的生命週期由 Randlab 統一管理：外部未提供時由 Randlab 產生並保存 baseSeed，
	//     後續所有 Generator/Sim 皆由 baseSeed 以固定算法派生子 seed。
	//   - 因此 Randlab 內部永遠不需要呼叫「不帶 seed 的 New()」，避免行為不一致與難以重現。
	New(uint64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory，回傳 XorWeyMix 產生器。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed uint64) PRNG {
	return NewXorWeyWithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts 對 []int 進行就地隨機重排，等同 Shuffle 但免去泛型實例化。
func (c *Core) ShuffleInts(src []int) {
	Shuffle(c, src)
}

// Uint64N 回傳 [0,n) 的無偏亂數，n 必須 >= 1。
//
// 採用遮罩 + 拒絕採樣：取覆蓋 n-1 的最小全一位元遮罩，重抽直到遮罩後的值
// 落在範圍內。遮罩最多比最小覆蓋寬一個 bit，期望抽取次數 < 2，無 modulo 偏差。
func Uint64N(r RAND, n uint64) uint64 {
	if n&(n-1) == 0 {
		// n 為 2 的冪：遮罩本身即精確，單次抽取必定命中
		return r.Uint64() & (n - 1)
	}
	mask := uint64(1)<<bits.Len64(n-1) - 1
	for {
		if v := r.Uint64() & mask; v < n {
			return v
		}
	}
}

// RandInt64 回傳 [a,b] 的均勻整數；若 a > b 回傳 ErrInvalidRange。
//
// 錯誤在任何狀態變動之前偵測，失敗的呼叫不會消耗亂數。
func RandInt64(r RAND, a, b int64) (int64, error) {
	if a > b {
		return 0, ErrInvalidRange
	}
	width := uint64(b) - uint64(a) + 1
	if width == 0 {
		// 全 64-bit 跨度（a=MinInt64, b=MaxInt64）：一次原始輸出即均勻
		return a + int64(r.Uint64()), nil
	}
	return a + int64(Uint64N(r, width)), nil
}

// Choice 從非空序列中均勻選取一個元素；空序列回傳 ErrEmptyChoice。
//
// 錯誤在任何狀態變動之前偵測，失敗的呼叫不會消耗亂數，也不改寫序列。
func Choice[T any](r RAND, seq []T) (T, error) {
	var zero T
	if len(seq) == 0 {
		return zero, ErrEmptyChoice
	}
	return seq[r.IntN(len(seq))], nil
}

// Shuffle 使用 Fisher-Yates (亦稱 Knuth Shuffle) 演算法
// 對序列進行「就地 (In-place)」隨機重排。
//
// 演算法特性：
//
//  1. 公平性 (Unbiased)：
//     由 index 高往低掃描，每個位置 i 與 [0,i] 內均勻抽出的 j 交換，
//     保證所有 N! 種排列出現機率嚴格相等 (1/N!)。
//
//  2. 效能 (High Performance)：
//     - 時間複雜度：O(N)，只需要對序列進行一次線性掃描。
//     - 空間複雜度：O(1)，直接在原記憶體位置交換，實現零配置 (Zero Allocation)。
func Shuffle[T any](r RAND, seq []T) {
	if len(seq) <= 1 {
		return
	}

	for i := len(seq) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
}
