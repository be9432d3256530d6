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

// Package tally 提供「小於 N 且滿足述詞」的計數原語。
//
// 這是給外部工具（例如 cmd/primes）用的 utility；本身沒有狀態，
// 也不依賴 core 的隨機數，純粹是 deterministic 的掃描計數。
package tally

// CountBelow 回傳 [0, limit) 之間滿足 pred 的值個數。
// pred 為 nil 時回 0，避免 caller 少包一層 nil check。
func CountBelow(limit uint64, pred func(uint64) bool) uint64 {
	if pred == nil {
		return 0
	}
	var count uint64
	for v := uint64(0); v < limit; v++ {
		if pred(v) {
			count++
		}
	}
	return count
}

// IsPrime 以 6k±1 試除法判斷質數。
// 對 tally 這種逐值掃描的用途足夠快，不需要篩法。
func IsPrime(n uint64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uint64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
