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

package index

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/server/httperr"
	"github.com/zintix-labs/randlab/suite"
)

// Handler 回傳主頁 handler：列出已註冊的試驗與可用端點。
func Handler(lab *randlab.Lab) http.HandlerFunc {
	type indexResponse struct {
		Service   string          `json:"service"`
		Trials    []suite.Summary `json:"trials"`
		Endpoints []string        `json:"endpoints"`
	}
	endpoints := []string{
		"GET/POST /v1/sample",
		"GET/POST /v1/randint",
		"POST     /v1/shuffle",
		"GET/POST /v1/sim",
		"POST     /v1/simbycfg",
		"GET      /v1/pool",
		"GET      /dev",
		"POST     /dev/draws",
		"POST     /dev/sim",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(indexResponse{
			Service:   "randlab",
			Trials:    sum,
			Endpoints: endpoints,
		})
	}
}
