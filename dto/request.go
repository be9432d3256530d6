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

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
)

// 防止 body 過大（預設 1MiB）
const maxBody = 1 << 20

// SampleRequest 為 /v1/sample 的請求結構。
//
// Seed Contract：
//   - seed 缺省：由 server 端的產生器池取樣（不可重現，適合一般用途）。
//   - seed 有值：以該 seed 建一顆全新核心取樣（可重現，適合測試/審計）。
type SampleRequest struct {
	N    int     `json:"n"`              // 筆數
	Mode string  `json:"mode"`           // u64 | float
	Seed *uint64 `json:"seed,omitempty"` // 可選：指定 seed（可重現）
}

// DecodeSampleRequest 會把 HTTP 請求解碼成 SampleRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（n/mode/seed）。
//   - POST：從 JSON body 反序列化。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何業務合法性校驗；
//     合法性（例如 n 的上限）應由上層 handler 決定。
//   - POST 會對 body 做大小限制（預設 1MiB）並開啟 DisallowUnknownFields()，
//     對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodeSampleRequest(r *http.Request) (*SampleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SampleRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Mode = q.Get("mode")

		if s := q.Get("n"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid n: %v", err))
			}
			req.N = v
		}

		if s := q.Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = &u
		}

		return req, nil

	case http.MethodPost:
		if err := decodeJSONBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// RandIntRequest 為 /v1/randint 的請求結構。閉區間 [lo, hi]。
type RandIntRequest struct {
	N    int     `json:"n"`
	Lo   int64   `json:"lo"`
	Hi   int64   `json:"hi"`
	Seed *uint64 `json:"seed,omitempty"`
}

// DecodeRandIntRequest 會把 HTTP 請求解碼成 RandIntRequest。
// GET 從 query string 讀取（n/lo/hi/seed）；POST 從 JSON body 反序列化。
func DecodeRandIntRequest(r *http.Request) (*RandIntRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(RandIntRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()

		if s := q.Get("n"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid n: %v", err))
			}
			req.N = v
		}

		if s := q.Get("lo"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid lo: %v", err))
			}
			req.Lo = v
		}

		if s := q.Get("hi"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid hi: %v", err))
			}
			req.Hi = v
		}

		if s := q.Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = &u
		}

		return req, nil

	case http.MethodPost:
		if err := decodeJSONBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// ShuffleRequest 為 /v1/shuffle 的請求結構。
// 洗牌需要完整序列，只支援 POST JSON。
type ShuffleRequest struct {
	Values []int64 `json:"values"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// DecodeShuffleRequest 會把 HTTP 請求解碼成 ShuffleRequest（POST 限定）。
func DecodeShuffleRequest(r *http.Request) (*ShuffleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(ShuffleRequest)
	if err := decodeJSONBody(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SimRequest 為 /v1/sim 的請求參數
type SimRequest struct {
	TID     plan.TID `json:"tid"`
	Round   int      `json:"round"`
	Workers int      `json:"workers,omitempty"`
	Seed    *uint64  `json:"seed,omitempty"`
}

// DecodeSimRequest 解析 GET 查詢參數或 POST JSON 內容
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	req := &SimRequest{}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("tid"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid tid: %v", err))
			}
			req.TID = plan.TID(id)
		}
		if s := q.Get("round"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid round: %v", err))
			}
			req.Round = n
		}
		if s := q.Get("workers"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid workers: %v", err))
			}
			req.Workers = n
		}
		if s := q.Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = &u
		}
	case http.MethodPost:
		if err := decodeJSONBody(r, req); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}

	return req, nil
}

func decodeJSONBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}
