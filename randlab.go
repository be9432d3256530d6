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

// Package randlab 提供 Randlab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Randlab 視為一個「可被後端/模擬器使用的 runtime」，它負責把下列兩個必需的地基組裝在一起，並提供建立 Simulator / Generator 的入口：
//  1. Suite：試驗目錄（Single Source of Truth / SSOT），定義有哪些取樣試驗、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Randlab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Randlab 會持有一份 Suite（你要跑哪一批試驗/設定檔）與一份 PRNGFactory（你用哪一個核心演算法）。
//   - Simulator 是對外提供批量模擬的最小單位；GenPool 則把單一 owner 的產生器租借給高併發的呼叫端。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Randlab 建立 GenPool，handlers 租借產生器取樣。
//   - 模擬器（sim）：由 Randlab 建立 Simulator 進行大量抽樣與統計。
package randlab

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/suite"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Randlab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」：
//
// 它把兩個必需的地基組合起來：
//  1. Suite：試驗目錄（SSOT），定義有哪些試驗、各自對應的設定檔名稱。
//  2. PRNGFactory：亂數核心工廠，保證可重現與可審計。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 suite、掃描設定檔、檢查重複與缺漏。
//   - 執行階段（runtime）：依據試驗 ID 產生 Simulator，或建立 GenPool 對外取樣。
//
// 重要設計原則：
//   - Suite 的 ID 唯一性只保證在「同一個 Lab instance」內（不同 Lab 之間不做全域保證）。
//   - 你要跑哪一批試驗、哪一套設定檔，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 GenPool 並對外服務），不建議再變更 Suite（避免非預期行為）。
type Lab struct {
	st  *suite.Suite
	cf  core.PRNGFactory
	sum []suite.Summary
}

// New 建立一個 Lab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Suite（通常同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會保存 PRNGFactory，確保由這個 Lab 建出來的 Simulator / Generator 在 RNG 行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Suite 無法解析 TrialPlan。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	st, err := suite.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		st: st,
		cf: cf,
	}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance：掃描、註冊並凍結。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...suite.Entry) error {
	return l.st.Register(ents...)
}

// RegisterAll
//
// 會掃描 suite 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *plan.TrialPlan，並用設定檔內宣告的 TrialID/TrialName 產生對應的 suite.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 suite 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
func (l *Lab) RegisterAll() error {
	cfgs := l.st.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]suite.Entry, 0, 64)
	seenID := map[plan.TID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				tp   *plan.TrialPlan
				perr error
			)
			switch ext {
			case ".yaml", ".yml":
				tp, perr = plan.GetTrialPlanByYAML(raw)
			case ".json":
				tp, perr = plan.GetTrialPlanByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if perr != nil {
				return errs.NewFatal(fmt.Sprintf("parse trialplan failed: %s", base))
			}

			name := strings.TrimSpace(tp.TrialName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("trial name required: %s", base))
			}

			id := tp.TrialID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate trial id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := l.st.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("trial id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate trial name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := l.st.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("trial name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, suite.Entry{
				TID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return l.st.Register(entries...)
}

func (l *Lab) Freeze() {
	l.st.Freeze()
}

func (l *Lab) EntryById(id plan.TID) (suite.Entry, bool) {
	return l.st.GetByID(id)
}

func (l *Lab) EntryByName(name string) (suite.Entry, bool) {
	return l.st.GetByName(name)
}

func (l *Lab) IDs() []plan.TID {
	return l.st.IDs()
}

func (l *Lab) All() []suite.Entry {
	return l.st.All()
}

func (l *Lab) Summary() ([]suite.Summary, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.st.IDs()
	cs := make([]suite.Summary, 0, len(ids))
	for _, id := range ids {
		tp, err := l.st.TrialPlanById(id)
		if err != nil {
			return nil, errs.NewFatal("parse trial plan failed")
		}
		s := suite.Summary{
			TID:    id,
			Name:   tp.TrialName,
			Mode:   tp.Mode,
			Rounds: tp.Rounds,
		}
		cs = append(cs, s)
	}
	l.sum = cs
	return l.sum, nil
}

// TrialPlanById 直接取出解析後的 TrialPlan（frozen 後才允許，與 runtime 入口一致）。
func (l *Lab) TrialPlanById(id plan.TID) (*plan.TrialPlan, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	return l.st.TrialPlanById(id)
}

// NewSimulator 依據 Suite 內的試驗 ID 建立一個 Simulator。
//
// 行為：
//  1. 由 Suite 取得對應的 TrialPlan（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 決定初始 seed：設定檔有宣告 seed 就用宣告值；否則由 crypto/rand 產生。
//
// 注意：seed 會被記錄在 Simulator 內（initSeed），用於追溯/重現；真正的可審計能力以 PRNG 的 Snapshot/Restore 合約為準。
func (l *Lab) NewSimulator(id plan.TID) (*Simulator, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	tp, err := l.st.TrialPlanById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(tp, l.cf)
}

// NewSimulatorWithSeed 與 NewSimulator 相同，但由呼叫端指定初始 seed（覆蓋設定檔宣告）。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列（取決於 PRNG 實作）。
func (l *Lab) NewSimulatorWithSeed(id plan.TID, seed uint64) (*Simulator, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	tp, err := l.st.TrialPlanById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(tp, l.cf, seed)
}

func (l *Lab) NewSimulatorByJSON(raw []byte, seed uint64) (*Simulator, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	tp, err := plan.GetTrialPlanByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(tp); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(tp, l.cf, seed)
}

func (l *Lab) NewSimulatorByYAML(raw []byte, seed uint64) (*Simulator, error) {
	if !l.st.IsFrozen() {
		return nil, errs.NewFatal("suite is not frozen yet")
	}
	tp, err := plan.GetTrialPlanByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(tp); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(tp, l.cf, seed)
}

func (l *Lab) validCfg(tp *plan.TrialPlan) error {
	ent, ok := l.st.GetByID(tp.TrialID)
	if !ok {
		return errs.NewWarn("tid not exist")
	}
	ent2, ok := l.st.GetByName(tp.TrialName)
	if !ok {
		return errs.NewWarn("trial name not exist")
	}
	if ent.TID != ent2.TID {
		return errs.NewWarn("trial id is not matched trial name")
	}
	return nil
}

// NewCore 以指定 seed 建一顆獨立核心。
//
// 回傳的核心由呼叫端單一擁有（single-owner）；同一個 seed 在同一個工廠實作下
// 必須產出相同序列（可重現）。
func (l *Lab) NewCore(seed uint64) *core.Core {
	return core.New(l.cf.New(seed))
}

// BuildPool 建立對外服務用的產生器池。
//
// 產生器是單一擁有者（single-owner）的：同一顆核心絕不允許兩個 goroutine 同時取樣，
// 否則序列不可重現。高併發下由 GenPool 以租借（lease）方式保證這件事。
//
// base seed 由 crypto/rand 產生，之後每顆核心的子 seed 由 seedMaker 決定性派生。
func (l *Lab) BuildPool(poolSize int) (*GenPool, error) {
	l.Freeze()

	seed, err := randSeed()
	if err != nil {
		return nil, errs.Wrap(err, "entropy source failed")
	}
	return newGenPool(poolSize, l.cf, seed)
}

// BuildPoolWithSeed 與 BuildPool 相同，但由呼叫端指定 base seed（測試/重現用）。
func (l *Lab) BuildPoolWithSeed(poolSize int, seed uint64) (*GenPool, error) {
	l.Freeze()
	return newGenPool(poolSize, l.cf, seed)
}

// randSeed 由 crypto/rand 取 8 bytes 當作 base seed。
func randSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
