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

package randlab

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
	"github.com/zintix-labs/randlab/recorder"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/stats"
)

const capPrepare int = 100

// Simulator 用於執行取樣試驗，可建立多顆產生器並平行紀錄統計。
type Simulator struct {
	TrialName string                   // 試驗名稱
	TrialID   plan.TID                 // 試驗識別碼
	tp        *plan.TrialPlan          // 方便重用建立 DrawRecorder
	cf        core.PRNGFactory         // 亂數核心工廠
	initSeed  uint64                   // 初始下的種子
	seedmaker *seedMaker               // 種子生成器
	gBuf      []*core.Core             // 併發執行產生器實例
	rBuf      []*recorder.DrawRecorder // 併發抽樣紀錄員
}

func newSimulator(tp *plan.TrialPlan, cf core.PRNGFactory) (*Simulator, error) {
	if tp.Seed != nil {
		return newSimulatorWithSeed(tp, cf, *tp.Seed)
	}
	seed, err := randSeed()
	if err != nil {
		return nil, errs.Wrap(err, "entropy source failed")
	}
	return newSimulatorWithSeed(tp, cf, seed)
}

func newSimulatorWithSeed(tp *plan.TrialPlan, cf core.PRNGFactory, seed uint64) (*Simulator, error) {
	s := &Simulator{
		TrialName: tp.TrialName,
		TrialID:   tp.TrialID,
		tp:        tp,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		gBuf:      make([]*core.Core, 1, capPrepare),
		rBuf:      make([]*recorder.DrawRecorder, 0, capPrepare),
	}
	s.gBuf[0] = core.New(cf.New(seed))
	return s, nil
}

// InitSeed 回傳本次模擬的 base seed（重現用）。
func (s *Simulator) InitSeed() uint64 {
	return s.initSeed
}

// Sim 單線模擬器：以一顆產生器連續抽指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(round int, showpb bool) (*stats.DrawReport, time.Duration, error) {
	defer s.reset()
	if round < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	draw, err := s.drawFunc()
	if err != nil {
		return nil, 0, err
	}
	if len(s.rBuf) == 0 {
		r, err := recorder.NewDrawRecorder(s.tp)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	r := s.rBuf[0]
	g := s.gBuf[0]

	bar := pb.StartNew(round)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < round; i++ {
		draw(g, r)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多顆產生器，總計 rounds*mp 次抽樣，合併統計結果後 回傳統計結果與用時
func (s *Simulator) SimMP(rounds int, mp int, showpb bool) (*stats.DrawReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	draw, err := s.drawFunc()
	if err != nil {
		return nil, 0, err
	}
	for len(s.gBuf) < mp {
		s.gBuf = append(s.gBuf, core.New(s.cf.New(s.seedmaker.next())))
	}

	for len(s.rBuf) < mp {
		r, err := recorder.NewDrawRecorder(s.tp)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			g := s.gBuf[i]
			st := s.rBuf[i]
			for r := 0; r < rounds; r++ {
				draw(g, st)
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeDrawRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// drawFunc 依試驗模式選出熱路徑用的抽樣函式。
//
// randint 的 lo <= hi 已在 TrialPlan 解析時驗證，熱路徑不會觸發 range error。
func (s *Simulator) drawFunc() (func(g *core.Core, r *recorder.DrawRecorder), error) {
	switch s.tp.Mode {
	case plan.ModeU64:
		return func(g *core.Core, r *recorder.DrawRecorder) {
			r.RecordU64(g.Uint64())
		}, nil
	case plan.ModeFloat:
		return func(g *core.Core, r *recorder.DrawRecorder) {
			r.RecordFloat(g.Float64())
		}, nil
	case plan.ModeRandInt:
		lo, hi := s.tp.Lo, s.tp.Hi
		return func(g *core.Core, r *recorder.DrawRecorder) {
			v, _ := core.RandInt64(g, lo, hi)
			r.RecordInt(v)
		}, nil
	default:
		return nil, errs.NewFatal("unknown trial mode: " + string(s.tp.Mode))
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

type seedMaker struct {
	state atomic.Uint64
}

func newSeedMaker(seed uint64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(seed)
	return s
}

// state 走全週期（不重複），再用可逆 Mix64 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP / GenPool 補機）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 Mix64 打散後的結果。
func (s *seedMaker) next() uint64 {
	for {
		old := s.state.Load()
		next := old*6364136223846793005 + 1442695040888963407 // full-period LCG mod 2^64
		if s.state.CompareAndSwap(old, next) {
			return core.Mix64(next)
		}
	}
}
