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

// Package core implements the XorWeyMix random number generator.
//
// XorWeyMix 以 xorshift 狀態轉移 + Weyl 序列累加 + SplitMix 式非線性混洗組成，
// 輸出序列對 seed 完全決定性（bit-for-bit），可作為審計/回放用的核心。

package core

import (
	"encoding/binary"
	"time"

	"github.com/zintix-labs/randlab/errs"
)

const (
	// weylStep 為固定的奇數增量（黃金比例常數）。
	// 奇數保證 Weyl 累加器在 2^64 週期內走訪所有殘差後才重複。
	// 此值在型別層面永不變動，因此以 const 表達而非 struct 欄位。
	weylStep uint64 = 0x9E3779B97F4A7C15

	// weylSeedTag 為 weyl 初始化時混入的區別常數，
	// 確保 state 與 weyl 永遠不會被初始化成相同值。
	weylSeedTag uint64 = 0xA5A5A5A5A5A5A5A5

	// Mix64 使用的兩個奇數乘法常數（SplitMix64）。
	mixMul1 uint64 = 0xBF58476D1CE4E5B9
	mixMul2 uint64 = 0x94D049BB133111EB

	snapshotLen = 24
)

// 兩種呼叫端輸入錯誤。皆在任何狀態變動「之前」被偵測並立即回傳。
var (
	// ErrInvalidRange : RandInt 的下界大於上界。
	ErrInvalidRange = errs.NewWarn("invalid range: a > b")
	// ErrEmptyChoice : Choice 收到空序列。
	ErrEmptyChoice = errs.NewWarn("cannot choose from empty sequence")
)

// nanotime 為預設 seed 的時間來源（高解析度 wall-clock）。
// 以變數注入，測試可替換以便 pin 住「無 seed 建構」的行為。
var nanotime = func() uint64 { return uint64(time.Now().UnixNano()) }

// XorWey 為 128-bit 狀態 + 單調計數器的 64-bit 亂數產生器。
//
// 並發語意：單一擁有者。所有方法（除建構外）都會改寫內部狀態且不做任何
// 原子性保證；同一實例的併發使用必須由呼叫端自行互斥，或一執行緒一實例。
type XorWey struct {
	state   uint64 // xorshift 暫存器；任何一步之後都不會是 0
	weyl    uint64 // Weyl 累加器；初始化保證非 0
	counter uint64 // 單調計數器，切斷 state 與 weyl 之間可能的短週期相關
}

// --------------------------------------
// 提供兩種New方式
// --------------------------------------

// NewXorWey 以高解析度時鐘產生 seed，建立新的 XorWey 實例。
func NewXorWey() *XorWey {
	g := &XorWey{}
	g.Reseed(nanotime())
	return g
}

// NewXorWeyWithSeed 以指定 seed 建立新的 XorWey 實例。
// 相同 seed 必定產生相同輸出序列。
func NewXorWeyWithSeed(seed uint64) *XorWey {
	g := &XorWey{}
	g.Reseed(seed)
	return g
}

// Reseed 依 seed 重建內部狀態，等同重新建構；先前的狀態全部丟棄。
//
// state 與 weyl 經 Mix64 展開後若恰為 0 會被強制為 1：
// 全零的 xorshift 暫存器是不動點，會讓產生器永遠卡死。
func (g *XorWey) Reseed(seed uint64) {
	g.state = Mix64(seed)
	if g.state == 0 {
		g.state = 1
	}
	g.weyl = Mix64(seed ^ weylSeedTag)
	if g.weyl == 0 {
		g.weyl = 1
	}
	g.counter = 0
}

//---------------------------------------
// 回傳介面方法
//---------------------------------------

// Uint64 回傳非負整數uint64亂數。
//
// 這是唯一會改寫狀態的原語；其餘公開操作全部由重複呼叫本方法組成。
func (g *XorWey) Uint64() uint64 {
	s := g.state
	s ^= s << 13
	s ^= s >> 7
	s ^= s << 17
	if s == 0 {
		s = ^uint64(0)
	}
	g.state = s

	g.weyl += weylStep
	z := s + g.weyl + g.counter
	g.counter++

	// 非線性輸出混洗（與 Mix64 的 2~4 步相同）
	z = (z ^ (z >> 30)) * mixMul1
	z = (z ^ (z >> 27)) * mixMul2
	return z ^ (z >> 31)
}

// Float64 回傳 [0,1) 的浮點亂數（53-bit 精度）。
//
// 捨棄低 11 bits 後除以 2^53，可填滿 double 的完整尾數解析度，
// 且永遠不會回傳 1.0。
func (g *XorWey) Float64() float64 {
	return float64(g.Uint64()>>11) / (1 << 53)
}

// RandInt 回傳 [a,b] 的均勻整數；若 a > b 回傳 ErrInvalidRange。
//
// 錯誤在任何狀態變動之前偵測，失敗的呼叫不會消耗亂數。
func (g *XorWey) RandInt(a, b int64) (int64, error) {
	return RandInt64(g, a, b)
}

// UintN 產出[0,n) 的uint整數，若 max == 0 回傳 0
func (g *XorWey) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(Uint64N(g, uint64(max)))
}

// IntN 產出[0,n) 的整數，若 max <= 0 回傳 -1
func (g *XorWey) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(Uint64N(g, uint64(max)))
}

// Snapshot 取得當下內部狀態（24 bytes，big-endian: state|weyl|counter）。
func (g *XorWey) Snapshot() ([]byte, error) {
	b := make([]byte, 0, snapshotLen)
	b = binary.BigEndian.AppendUint64(b, g.state)
	b = binary.BigEndian.AppendUint64(b, g.weyl)
	b = binary.BigEndian.AppendUint64(b, g.counter)
	return b, nil
}

// Restore 依序列化狀態還原內部狀態。
func (g *XorWey) Restore(data []byte) error {
	if len(data) != snapshotLen {
		return errs.Warnf("snapshot must be %d bytes, got %d", snapshotLen, len(data))
	}
	state := binary.BigEndian.Uint64(data[0:8])
	if state == 0 {
		// 合法演進下 state 永遠非 0；零值代表快照已損壞
		return errs.NewWarn("corrupt snapshot: zero state")
	}
	g.state = state
	g.weyl = binary.BigEndian.Uint64(data[8:16])
	g.counter = binary.BigEndian.Uint64(data[16:24])
	return nil
}

//---------------------------------------
// 內部方法
//---------------------------------------

// Mix64 將輸入值混洗成新的 64-bit 值（SplitMix64 式 avalanche），
// 用於種子展開與子 seed 派生。純函數，不觸碰任何產生器狀態。
func Mix64(x uint64) uint64 {
	x += weylStep
	x = (x ^ (x >> 30)) * mixMul1
	x = (x ^ (x >> 27)) * mixMul2
	return x ^ (x >> 31)
}
