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
	"fmt"

	"github.com/zintix-labs/randlab/corefmt"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/stats"
)

// DevSimulator
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim      *Simulator // 只開放 Sim 功能
	before   []byte
	after    []byte
	before64 string
	after64  string
}

// NewDevSimulator
//
// 注意只能由 Lab 起
// 只提供給 Dev 模式使用的模擬器，重點是保持單產生器模式所以保持可重現性
func (l *Lab) NewDevSimulator(tid plan.TID, seed uint64) (*DevSimulator, error) {
	sim, err := l.NewSimulatorWithSeed(tid, seed)
	if err != nil {
		return nil, err
	}
	be, err := sim.gBuf[0].Snapshot()
	if err != nil {
		return nil, err
	}
	dev := &DevSimulator{
		sim:      sim,
		before:   be,
		before64: corefmt.EncodeBase64URL(be),
	}
	return dev, nil
}

// DevDrawReport 逐筆列出抽樣值，配合 before/after 快照可完整重現一段序列。
type DevDrawReport struct {
	Before string    `json:"start_b64u"`
	After  string    `json:"after_b64u"`
	Round  int       `json:"round"`
	Mode   plan.Mode `json:"mode"`
	U64    []string  `json:"u64,omitempty"` // 16 位 hex
	Floats []float64 `json:"floats,omitempty"`
	Ints   []int64   `json:"ints,omitempty"`
}

func (d *DevSimulator) Draws(round int) (DevDrawReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDrawReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	g := d.sim.gBuf[0]
	be, err := g.Snapshot()
	if err != nil {
		return DevDrawReport{}, err
	}

	rep := DevDrawReport{
		Before: corefmt.EncodeBase64URL(be),
		Round:  round,
		Mode:   d.sim.tp.Mode,
	}

	switch d.sim.tp.Mode {
	case plan.ModeU64:
		rep.U64 = make([]string, 0, round)
		for i := 0; i < round; i++ {
			rep.U64 = append(rep.U64, fmt.Sprintf("%016x", g.Uint64()))
		}
	case plan.ModeFloat:
		rep.Floats = make([]float64, 0, round)
		for i := 0; i < round; i++ {
			rep.Floats = append(rep.Floats, g.Float64())
		}
	case plan.ModeRandInt:
		rep.Ints = make([]int64, 0, round)
		for i := 0; i < round; i++ {
			v, verr := core.RandInt64(g, d.sim.tp.Lo, d.sim.tp.Hi)
			if verr != nil {
				return DevDrawReport{}, verr
			}
			rep.Ints = append(rep.Ints, v)
		}
	default:
		return DevDrawReport{}, errs.NewWarn("unknown trial mode: " + string(d.sim.tp.Mode))
	}

	af, err := g.Snapshot()
	if err != nil {
		return DevDrawReport{}, err
	}
	rep.After = corefmt.EncodeBase64URL(af)
	return rep, nil
}

func (d *DevSimulator) RestoreDraws(be64 string, round int) (DevDrawReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDrawReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析快照
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevDrawReport{}, errs.NewWarn("decode snapshot failed: " + err.Error())
	}
	// restore
	if err := d.sim.gBuf[0].Restore(be); err != nil {
		return DevDrawReport{}, errs.NewWarn("generator restore failed")
	}
	return d.Draws(round)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.DrawReport `json:"statistic"`
}

func (d *DevSimulator) Sim(round int) (DevSimReport, error) {
	// 先存 before 快照
	g := d.sim.gBuf[0]
	be, err := g.Snapshot()
	if err != nil {
		return DevSimReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	if round < 1 || round > 3_000_000 {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	stat, _, err := d.sim.Sim(round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := g.Snapshot()
	if err != nil {
		return DevSimReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevSimReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(be64 string, round int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "decode snapshot failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.sim.gBuf[0].Restore(be); err != nil {
		return DevSimReport{}, errs.Wrap(err, "restore simulator failed")
	}

	return d.Sim(round)
}
