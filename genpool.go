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
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
)

// GenPool 管理對外服務用的產生器實例。
//
// 產生器是單一擁有者（single-owner）的：同一顆核心同一時間只允許一個 goroutine 取樣，
// 否則輸出序列不可重現也不可審計。GenPool 透過一個有緩衝的 channel 實現租借：
//   - Do() 借出一顆產生器、執行呼叫端的函式、歸還。
//   - 若函式 panic 或回傳 fatal error，該產生器視為狀態不可信，直接丟棄並以派生 seed 補上一顆新的。
//
// 整體機制確保整個系統在高併發下仍保持穩定與可用性。
type GenPool struct {
	cf            core.PRNGFactory
	initSeed      uint64
	seedMaker     *seedMaker
	pool          chan *core.Core // 可用產生器的通道，用於取得和歸還
	done          chan struct{}   // 關閉訊號：關閉後不再允許借出/歸還/補機
	closeOnce     sync.Once       // 確保 Close() 只執行一次
	poolsize      int             // 目標容量
	rebuild       atomic.Int32    // 補機次數
	inflight      atomic.Int32    // 使用中
	panics        atomic.Int32    // panic 次數
	fatals        atomic.Int32    // fatal 次數（產生器狀態不可信）
	closeReason   atomic.Value    // string: 關閉原因
	closeInflight atomic.Int32    // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32    // 關閉當下 pool 可用數量（len(pool) 快照）
}

// newGenPool 建立產生器池。
//   - n: 產生器數量（至少為 1）
//   - seed: base seed，每顆產生器的子 seed 由 seedMaker 決定性派生
func newGenPool(n int, cf core.PRNGFactory, seed uint64) (*GenPool, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	n = max(1, n)
	p := &GenPool{
		cf:        cf,
		initSeed:  seed,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *core.Core, n),
		done:      make(chan struct{}),
		poolsize:  n,
	}

	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)

	for i := 0; i < n; i++ {
		p.pool <- core.New(cf.New(p.seedMaker.next()))
	}
	return p, nil
}

// Close 進入關閉狀態：
//   - 通知之後所有 Do() 應該直接回 error
//   - defer 歸還/補機時會觀察 done，避免對已關閉狀態進行 send
func (p *GenPool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *GenPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（thread-safe, reason 只會被寫入一次）。
func (p *GenPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		// 進入關閉狀態的瞬間做一次快照，方便外部觀測與故障排查。
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		close(p.done)
	})
}

// isFatalErr 用於判斷本次錯誤是否代表「產生器狀態不可信」需要淘汰/補機。
//
// 原則：
//   - panic 一律視為 broken（由 Do 的 defer/recover 處理）
//   - 一般的 request/validation 類錯誤不應淘汰產生器（例如 invalid range）
//   - 只有錯誤型別本身明確宣告「fatal」時才視為 broken
func isFatalErr(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*errs.E); ok {
		if e.ErrLv == errs.Fatal {
			return true
		}
	}
	return false
}

// Do 借出一顆產生器執行 fn，結束後歸還。
//
// fn 在持有產生器期間是唯一的 owner，可以安全地連續取樣或做 Snapshot/Restore。
// fn 不得保留產生器的 reference 到 Do 返回之後。
func (p *GenPool) Do(ctx context.Context, fn func(g *core.Core) error) (err error) {
	var g *core.Core
	borrowed := false
	select {
	case <-p.done:
		// 先觀察是否已關閉：關閉直接回失敗，不阻塞
		return errs.NewFatal("gen pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		// 如果通知取消
		return errs.NewWarn("lease canceled/timeout: " + ctx.Err().Error())
	case g = <-p.pool:
		// 有取出產生器
		borrowed = true
		p.inflight.Add(1)
	}

	// 理論上不會拿到 nil；若發生代表 pool 有嚴重問題。
	if g == nil {
		return errs.NewFatal("gen pool got nil generator")
	}

	var isPanic bool

	defer func() {
		if borrowed {
			// 有借有還 再借不難
			p.inflight.Add(-1)
		}
		if r := recover(); r != nil {
			// 系統恢復
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("generator panic : %v", r))
		}

		// 若已關閉，直接丟棄產生器（不歸還、不補機），避免 send 到已停止的系統。
		if p.Closed() {
			return
		}

		// 若發生 panic 或「致命錯誤」，表示產生器狀態不可信，丟棄並補機。
		// 注意：一般的 request/validation error 不應淘汰產生器。
		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			ng := core.New(p.cf.New(p.seedMaker.next()))
			p.rebuild.Add(1)

			// 補機前再看一次是否已關閉（避免並行 Close 後 send / block）
			select {
			case <-p.done:
			case p.pool <- ng:
				// ok
			}
			return
		}

		// 若有錯誤但非致命（多半是 request/validation 類錯誤），產生器仍然是健康的：
		// 歸還 pool 並把 err 原樣回傳。此處不改寫 err。
		select {
		case <-p.done:
		case p.pool <- g:
			// ok
		}
	}()

	return fn(g)
}

func (p *GenPool) PoolSize() int {
	return p.poolsize
}

func (p *GenPool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *GenPool) ReBuild() int {
	return int(p.rebuild.Load())
}

func (p *GenPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (p *GenPool) Panics() int {
	return int(p.panics.Load())
}

func (p *GenPool) Fatals() int {
	return int(p.fatals.Load())
}

// GenPoolMetrics 是「拉取式（pull）」的觀測快照。
//
// 設計原則：
//   - 不綁任何 metrics/telemetry SDK（Prometheus / OpenTelemetry 等），由上層自己決定如何輸出。
//   - 欄位值以讀取當下為主；其中 Available 來自 len(chan)，在高併發下是「近似值」但足夠用於營運觀測。
//   - 關閉瞬間的快照（CloseInflight/CloseAvail）只會在 Close 時寫入一次，用於事後排查。
type GenPoolMetrics struct {
	PoolSize    int    `json:"pool_size"`    // 目標容量（初始化指定）
	Available   int    `json:"available"`    // 當下可借出的產生器數（len(pool)）
	Inflight    int    `json:"inflight"`     // 使用中（借出未歸還）
	Rebuild     int    `json:"rebuild"`      // 補機次數
	Panics      int    `json:"panics"`       // panic 次數
	Fatals      int    `json:"fatals"`       // fatal 次數
	Closed      bool   `json:"closed"`       // 是否已關閉
	CloseReason string `json:"close_reason"` // 關閉原因

	CloseInflight int `json:"close_inflight"` // Close() 當下 inflight（-1 表示尚未關閉）
	CloseAvail    int `json:"close_avail"`    // Close() 當下 available（-1 表示尚未關閉）
}

// Metrics 回傳觀測快照；上層可用於 log、/metrics、或餵給 exporter。
func (p *GenPool) Metrics() GenPoolMetrics {
	return GenPoolMetrics{
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
	}
}

// Available 回傳當下 pool 可用產生器數（len(pool)）。在高併發下為近似值。
func (p *GenPool) Available() int {
	return len(p.pool)
}
