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

package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/dto"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/server/httperr"
	"github.com/zintix-labs/randlab/server/svrcfg"
)

// 單次請求的取樣筆數上限
const maxDraws = 100000

// 池租借的等待上限
const leaseTimeout = 5 * time.Second

// SampleHandler 服務 /v1/sample、/v1/randint、/v1/shuffle 與 /v1/pool。
//
// Seed Contract（與 dto.SampleRequest 一致）：
//   - seed 缺省：向 GenPool 租借一顆產生器取樣（吞吐優先，不可重現）。
//   - seed 有值：以該 seed 建一顆全新核心（可重現，適合測試/審計）；
//     這顆核心只活在本次請求內，不進池。
type SampleHandler struct {
	lab  *randlab.Lab
	pool *randlab.GenPool
}

func NewSampleHandler(sCfg *svrcfg.SvrCfg) (*SampleHandler, error) {
	p, err := sCfg.Lab.BuildPool(sCfg.PoolSize)
	if err != nil {
		return nil, errs.Wrap(err, "build sample handler error")
	}
	return &SampleHandler{lab: sCfg.Lab, pool: p}, nil
}

// withGenerator 依 seed 合約決定產生器來源並執行 fn。
func (sh *SampleHandler) withGenerator(ctx context.Context, seed *uint64, fn func(g *core.Core) error) error {
	if seed != nil {
		return fn(sh.lab.NewCore(*seed))
	}
	ctx, cancel := context.WithTimeout(ctx, leaseTimeout)
	defer cancel()
	return sh.pool.Do(ctx, fn)
}

func (sh *SampleHandler) Sample(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSampleRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 業務檢驗
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = "u64"
	}
	if mode != "u64" && mode != "float" {
		httperr.Errs(w, errs.NewWarn("mode must be u64 or float"))
		return
	}
	if req.N < 1 || req.N > maxDraws {
		httperr.Errs(w, errs.NewWarn("n must be between 1 and 100,000"))
		return
	}

	resp := dto.SampleResult{Mode: mode, N: req.N, Seed: req.Seed}
	err = sh.withGenerator(q.Context(), req.Seed, func(g *core.Core) error {
		switch mode {
		case "u64":
			resp.U64 = make([]string, 0, req.N)
			for i := 0; i < req.N; i++ {
				resp.U64 = append(resp.U64, fmt.Sprintf("%016x", g.Uint64()))
			}
		case "float":
			resp.Floats = make([]float64, 0, req.N)
			for i := 0; i < req.N; i++ {
				resp.Floats = append(resp.Floats, g.Float64())
			}
		}
		return nil
	})
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (sh *SampleHandler) RandInt(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeRandIntRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	if req.N < 1 || req.N > maxDraws {
		httperr.Errs(w, errs.NewWarn("n must be between 1 and 100,000"))
		return
	}
	if req.Lo > req.Hi {
		// 提早回絕，省掉租借
		httperr.Errs(w, core.ErrInvalidRange)
		return
	}

	resp := dto.RandIntResult{N: req.N, Lo: req.Lo, Hi: req.Hi, Seed: req.Seed}
	err = sh.withGenerator(q.Context(), req.Seed, func(g *core.Core) error {
		resp.Values = make([]int64, 0, req.N)
		for i := 0; i < req.N; i++ {
			v, verr := core.RandInt64(g, req.Lo, req.Hi)
			if verr != nil {
				return verr
			}
			resp.Values = append(resp.Values, v)
		}
		return nil
	})
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (sh *SampleHandler) Shuffle(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeShuffleRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if len(req.Values) < 1 || len(req.Values) > maxDraws {
		httperr.Errs(w, errs.NewWarn("values length must be between 1 and 100,000"))
		return
	}

	resp := dto.ShuffleResult{Seed: req.Seed}
	err = sh.withGenerator(q.Context(), req.Seed, func(g *core.Core) error {
		core.Shuffle(g, req.Values)
		resp.Values = req.Values
		return nil
	})
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// PoolMetrics 回傳 GenPool 的營運觀測快照。
func (sh *SampleHandler) PoolMetrics(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sh.pool.Metrics())
}
