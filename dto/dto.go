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

package dto

// SampleResult 為 /v1/sample 的回應結構。
//
// u64 模式輸出 16 位 hex 字串（避免 JSON number 在 2^53 以上掉精度），
// float 模式輸出 [0,1) 浮點。
type SampleResult struct {
	Mode   string    `json:"mode"`           // 取樣模式
	N      int       `json:"n"`              // 筆數
	Seed   *uint64   `json:"seed,omitempty"` // 呼叫端指定的 seed（未指定則省略）
	U64    []string  `json:"u64,omitempty"`
	Floats []float64 `json:"floats,omitempty"`
}

// RandIntResult 為 /v1/randint 的回應結構。
type RandIntResult struct {
	N      int     `json:"n"`
	Lo     int64   `json:"lo"`
	Hi     int64   `json:"hi"`
	Seed   *uint64 `json:"seed,omitempty"`
	Values []int64 `json:"values"`
}

// ShuffleResult 為 /v1/shuffle 的回應結構。
type ShuffleResult struct {
	Seed   *uint64 `json:"seed,omitempty"`
	Values []int64 `json:"values"`
}
