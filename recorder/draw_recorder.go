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

package recorder

import (
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
	"github.com/zintix-labs/randlab/stats"
)

const unitScale = 1.0 / (1 << 53)

// DrawRecorder 取樣紀錄員
//
// DrawRecorder 負責紀錄取樣結果，並透過 Done 輸出統計報表。
// 紀錄時只累積 int/float 計數，避免熱路徑上的轉型與配置成本。
type DrawRecorder struct {
	TrialName string
	TrialID   plan.TID
	Mode      plan.Mode
	Lo        int64
	Hi        int64
	Basic     *BasicRecord
	Dist      *DistRecord
}

// BasicRecord 基本取樣資料紀錄
type BasicRecord struct {
	Rounds    int
	UnitSum   float64
	UnitSqSum float64 // 平方和

	// 位元佔用：只有原始 64-bit 模式會累積
	BitsSampled bool
	LowBitOnes  int
	TopBitOnes  int
}

// DistRecord 單位值區間落點統計
type DistRecord struct {
	Collect []int // decile 落點計數
}

func NewDrawRecorder(tp *plan.TrialPlan) (*DrawRecorder, error) {
	r := new(DrawRecorder)

	if tp == nil {
		return r, errs.NewFatal("trial plan required")
	}
	if tp.Mode == plan.ModeRandInt && tp.Lo > tp.Hi {
		return r, errs.Fatalf("trial plan range err: lo=%d hi=%d", tp.Lo, tp.Hi)
	}

	// 通過valid
	r.TrialName = tp.TrialName
	r.TrialID = tp.TrialID
	r.Mode = tp.Mode
	r.Lo = tp.Lo
	r.Hi = tp.Hi
	r.Basic = &BasicRecord{BitsSampled: tp.Mode == plan.ModeU64}
	r.Dist = &DistRecord{Collect: make([]int, stats.DistBucketCount)}

	return r, nil
}

// RecordU64 紀錄一次原始 64-bit 輸出：位元佔用 + 單位值。
func (r *DrawRecorder) RecordU64(v uint64) {
	r.Basic.LowBitOnes += int(v & 1)
	r.Basic.TopBitOnes += int(v >> 63)
	r.recordUnit(float64(v>>11) * unitScale)
}

// RecordFloat 紀錄一次 [0,1) 浮點輸出。
func (r *DrawRecorder) RecordFloat(f float64) {
	r.recordUnit(f)
}

// RecordInt 紀錄一次 [Lo,Hi] 有界整數輸出，normalize 成單位值。
func (r *DrawRecorder) RecordInt(v int64) {
	width := uint64(r.Hi) - uint64(r.Lo) + 1
	if width == 0 {
		// 全 64-bit 跨度：直接用無號表示取單位值
		r.recordUnit(float64(uint64(v)-uint64(r.Lo)) / (1 << 63) / 2)
		return
	}
	r.recordUnit(float64(uint64(v)-uint64(r.Lo)) / float64(width))
}

func (r *DrawRecorder) recordUnit(u float64) {
	r.Basic.Rounds++
	r.Basic.UnitSum += u
	r.Basic.UnitSqSum += u * u

	idx := int(u * stats.DistBucketCount)
	if idx >= stats.DistBucketCount {
		idx = stats.DistBucketCount - 1
	}
	r.Dist.Collect[idx]++
}

// Done 將紀錄整理成統計報表；回傳的報表仍需呼叫 Done() 完成最終計算。
func (r *DrawRecorder) Done() *stats.DrawReport {
	rep := &stats.DrawReport{
		Summary: &stats.SummaryReport{
			TrialName:   r.TrialName,
			TrialID:     r.TrialID,
			Mode:        r.Mode,
			Rounds:      r.Basic.Rounds,
			UnitSum:     r.Basic.UnitSum,
			UnitSqSum:   r.Basic.UnitSqSum,
			BitsSampled: r.Basic.BitsSampled,
			LowBitOnes:  r.Basic.LowBitOnes,
			TopBitOnes:  r.Basic.TopBitOnes,
		},
		Dist: &stats.DistReport{
			Bucket:  stats.BucketLabels(),
			Collect: append([]int(nil), r.Dist.Collect...),
		},
	}
	return rep
}

// MergeDrawRecorder 合併多個 worker 的紀錄（SimMP 用）。
// 所有紀錄必須來自同一份 TrialPlan（以 TrialName 判定）。
func MergeDrawRecorder(rs []*DrawRecorder) (*DrawRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("nothing to merge")
	}
	r0 := rs[0]
	m := &DrawRecorder{
		TrialName: r0.TrialName,
		TrialID:   r0.TrialID,
		Mode:      r0.Mode,
		Lo:        r0.Lo,
		Hi:        r0.Hi,
		Basic:     &BasicRecord{BitsSampled: r0.Basic.BitsSampled},
		Dist:      &DistRecord{Collect: make([]int, len(r0.Dist.Collect))},
	}
	for _, v := range rs {
		if v.TrialName != r0.TrialName {
			return nil, errs.NewFatal("merge draw record err : different trial name")
		}
		if len(v.Dist.Collect) != len(m.Dist.Collect) {
			return nil, errs.NewFatal("merge draw record err : bucket mismatch")
		}
		m.Basic.Rounds += v.Basic.Rounds
		m.Basic.UnitSum += v.Basic.UnitSum
		m.Basic.UnitSqSum += v.Basic.UnitSqSum
		m.Basic.LowBitOnes += v.Basic.LowBitOnes
		m.Basic.TopBitOnes += v.Basic.TopBitOnes
		for i, c := range v.Dist.Collect {
			m.Dist.Collect[i] += c
		}
	}
	return m, nil
}
