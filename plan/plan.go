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

// Package plan 定義取樣試驗（trial）的設定檔結構與解析入口。
//
// 一份 TrialPlan 描述「用哪個 seed、以哪種模式、抽多少次」，
// 是 randlab 可重現模擬的最小設定單位。
package plan

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/randlab/errs"
)

// TID 為試驗在 Suite 內的唯一識別碼。
type TID uint

// Mode 為取樣模式。
type Mode string

const (
	ModeU64     Mode = "u64"     // 原始 64-bit 輸出
	ModeFloat   Mode = "float"   // [0,1) 均勻浮點
	ModeRandInt Mode = "randint" // [Lo,Hi] 有界整數
)

// TrialPlan 包含執行一個取樣試驗所需的所有高階設定。
type TrialPlan struct {
	TrialName string  `yaml:"trial_name" json:"trial_name"`
	TrialID   TID     `yaml:"trial_id"   json:"trial_id"`
	Mode      Mode    `yaml:"mode"       json:"mode"`
	Rounds    int     `yaml:"rounds"     json:"rounds"`
	Seed      *uint64 `yaml:"seed"       json:"seed,omitempty"` // nil 表示由 runtime 決定
	Lo        int64   `yaml:"lo"         json:"lo"`
	Hi        int64   `yaml:"hi"         json:"hi"`
}

// init 正規化欄位並執行基本檢查。
func (tp *TrialPlan) init() error {
	tp.TrialName = strings.TrimSpace(tp.TrialName)
	tp.Mode = Mode(strings.ToLower(strings.TrimSpace(string(tp.Mode))))
	return tp.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (tp *TrialPlan) valid() error {
	if tp.TrialName == "" {
		return errs.NewFatal("trial_name required")
	}

	switch tp.Mode {
	case ModeU64, ModeFloat:
		// Lo/Hi 不參與
	case ModeRandInt:
		if tp.Lo > tp.Hi {
			return errs.NewFatal(fmt.Sprintf("trial_name: %s err:lo > hi (%d > %d)", tp.TrialName, tp.Lo, tp.Hi))
		}
	default:
		return errs.NewFatal(fmt.Sprintf("trial_name: %s err:unknown mode %q", tp.TrialName, tp.Mode))
	}

	if tp.Rounds < 1 {
		return errs.NewFatal(fmt.Sprintf("trial_name: %s err:rounds must > 0", tp.TrialName))
	}

	return nil
}
