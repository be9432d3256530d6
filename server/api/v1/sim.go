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
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/dto"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/server/httperr"
	"github.com/zintix-labs/randlab/stats"
)

type SimHandler struct {
	Lab *randlab.Lab
}

func NewSimHandler(lab *randlab.Lab) (*SimHandler, error) {
	return &SimHandler{Lab: lab}, nil
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Stats    *stats.DrawReport `json:"stats"`
		Seed     uint64            `json:"seed"`
		UsedTime int64             `json:"used_ms"`
	}
	// ---
	req, err := dto.DecodeSimRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 業務檢驗
	if req.TID == 0 {
		httperr.Errs(w, errs.NewWarn("tid is required"))
		return
	}
	if _, ok := sh.Lab.EntryById(req.TID); !ok {
		httperr.Errs(w, errs.NewWarn("tid not found"))
		return
	}
	if req.Round < 1 || req.Round > 1000000 {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 1,000,000"))
		return
	}
	if req.Workers < 0 || req.Workers > 32 {
		httperr.Errs(w, errs.NewWarn("workers must be between 0 and 32"))
		return
	}
	if req.Seed == nil {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := binary.BigEndian.Uint64(b[:])
		req.Seed = &v
	}
	sim, err := sh.Lab.NewSimulatorWithSeed(req.TID, *req.Seed)
	if err != nil {
		// 這裡的錯誤是來自lab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.TID)))
		return
	}

	var (
		st   *stats.DrawReport
		used int64
	)
	if req.Workers > 1 {
		rep, ut, serr := sim.SimMP(req.Round, req.Workers, false)
		if serr != nil {
			httperr.Errs(w, errs.Wrap(serr, "simulate err"))
			return
		}
		st, used = rep, ut.Milliseconds()
	} else {
		rep, ut, serr := sim.Sim(req.Round, false)
		if serr != nil {
			httperr.Errs(w, errs.Wrap(serr, "simulate err"))
			return
		}
		st, used = rep, ut.Milliseconds()
	}

	resp := SimResponse{
		Stats:    st,
		Seed:     *req.Seed,
		UsedTime: used,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
