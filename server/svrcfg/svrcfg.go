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

package svrcfg

import (
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/server/logger"
)

type SvrCfg struct {
	Log      *slog.Logger
	PoolSize int
	Lab      *randlab.Lab
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= sc.PoolSize <= 64
	// for 資源管理
	sc.PoolSize = max(1, sc.PoolSize)
	sc.PoolSize = min(64, sc.PoolSize)
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}

// EnvCfg 承載由環境變數決定的部署面設定。
//
// 只放「部署會變」的東西（位址、log 模式、池容量）；
// 試驗設定（TrialPlan）一律走 fs.FS 注入，不走環境變數。
type EnvCfg struct {
	Addr     string `env:"RANDLAB_ADDR" envDefault:":8080"`
	LogMode  string `env:"RANDLAB_LOG_MODE" envDefault:"dev"` // dev | prod | silence
	PoolSize int    `env:"RANDLAB_POOL_SIZE" envDefault:"4"`
}

// FromEnv 讀取環境變數並套用預設值。
func FromEnv() (*EnvCfg, error) {
	ec := new(EnvCfg)
	if err := env.Parse(ec); err != nil {
		return nil, errs.Wrap(err, "parse env config failed")
	}
	return ec, nil
}

// Mode 把 LogMode 字串轉成 logger 的 enum；未知值退回 dev。
func (ec *EnvCfg) Mode() logger.LogMode {
	switch strings.ToLower(strings.TrimSpace(ec.LogMode)) {
	case "prod":
		return logger.ModeProd
	case "silence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
