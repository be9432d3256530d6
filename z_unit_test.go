package randlab

import (
	"context"
	"math"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/stats"
)

func testCfgFS() fstest.MapFS {
	return fstest.MapFS{
		"raw.yaml": &fstest.MapFile{Data: []byte(
			"trial_name: raw\ntrial_id: 1\nmode: u64\nrounds: 100000\n")},
		"uniform.yaml": &fstest.MapFile{Data: []byte(
			"trial_name: uniform\ntrial_id: 2\nmode: float\nrounds: 100000\nseed: 42\n")},
		"decile.json": &fstest.MapFile{Data: []byte(
			`{"trial_name":"decile","trial_id":3,"mode":"randint","rounds":100000,"lo":0,"hi":9}`)},
	}
}

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(core.Default(), Configs(testCfgFS()))
	if err != nil {
		t.Fatal(err)
	}
	return lab
}

func TestNewRequiresDeps(t *testing.T) {
	if _, err := New(nil, Configs(testCfgFS())); err == nil {
		t.Fatal("nil factory accepted")
	}
	if _, err := New(core.Default(), nil); err == nil {
		t.Fatal("empty configs accepted")
	}
}

func TestNewAutoRegistersEverything(t *testing.T) {
	lab := newTestLab(t)

	ids := lab.IDs()
	if len(ids) != 3 {
		t.Fatalf("want 3 trials, got %v", ids)
	}
	if _, ok := lab.EntryById(3); !ok {
		t.Fatal("decile trial missing")
	}
	if _, ok := lab.EntryByName("uniform"); !ok {
		t.Fatal("uniform trial missing")
	}

	sum, err := lab.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if len(sum) != 3 {
		t.Fatalf("summary size = %d", len(sum))
	}
	for _, s := range sum {
		if s.Rounds != 100000 {
			t.Fatalf("summary rounds = %d", s.Rounds)
		}
	}
}

func TestRegisterAllFailFast(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte("trial_name: a\ntrial_id: 1\nmode: u64\nrounds: 10\n")},
		"b.yaml": &fstest.MapFile{Data: []byte("trial_name: b\ntrial_id: 1\nmode: u64\nrounds: 10\n")},
	}
	if _, err := NewAuto(core.Default(), Configs(dup)); err == nil {
		t.Fatal("duplicate trial id accepted")
	}

	bad := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte("trial_name: a\ntrial_id: 1\nmode: dice\nrounds: 10\n")},
	}
	if _, err := NewAuto(core.Default(), Configs(bad)); err == nil {
		t.Fatal("unknown mode accepted")
	}
}

func TestSimulatorRequiresFrozenSuite(t *testing.T) {
	lab, err := New(core.Default(), Configs(testCfgFS()))
	if err != nil {
		t.Fatal(err)
	}
	if err := lab.RegisterAll(); err != nil {
		t.Fatal(err)
	}
	if _, err := lab.NewSimulator(1); err == nil {
		t.Fatal("simulator created before freeze")
	}
}

func TestSimDeterminism(t *testing.T) {
	lab := newTestLab(t)

	run := func() *stats.DrawReport {
		s, err := lab.NewSimulatorWithSeed(1, 123456789)
		if err != nil {
			t.Fatal(err)
		}
		rep, _, err := s.Sim(50000, false)
		if err != nil {
			t.Fatal(err)
		}
		return rep
	}

	a, b := run(), run()
	if a.Summary.UnitSum != b.Summary.UnitSum {
		t.Fatalf("same seed produced different sums: %v != %v", a.Summary.UnitSum, b.Summary.UnitSum)
	}
	if a.Summary.LowBitOnes != b.Summary.LowBitOnes {
		t.Fatal("same seed produced different low-bit counts")
	}
	for i := range a.Dist.Collect {
		if a.Dist.Collect[i] != b.Dist.Collect[i] {
			t.Fatalf("bucket %d diverged", i)
		}
	}
}

func TestSimMPMergesAllRounds(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSimulatorWithSeed(3, 7)
	if err != nil {
		t.Fatal(err)
	}
	rep, _, err := s.SimMP(25000, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Summary.Rounds != 100000 {
		t.Fatalf("merged rounds = %d", rep.Summary.Rounds)
	}
	// randint(0,9) 的 decile 均勻性：每桶理論 10000
	for i, c := range rep.Dist.Collect {
		if math.Abs(float64(c)-10000) > 1500 {
			t.Fatalf("bucket %d count %d outside ±15%%", i, c)
		}
	}
	if rep.Summary.BitsSampled {
		t.Fatal("randint trial should not report bit stats")
	}
}

func TestSimMPRejectsBadParams(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSimulatorWithSeed(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.SimMP(10, 0, false); err == nil {
		t.Fatal("zero workers accepted")
	}
	if _, _, err := s.Sim(0, false); err == nil {
		t.Fatal("zero rounds accepted")
	}
}

func TestSimulatorByYAMLValidatesAgainstSuite(t *testing.T) {
	lab := newTestLab(t)

	// 與 suite 註冊內容相符：可建立
	ok := []byte("trial_name: raw\ntrial_id: 1\nmode: u64\nrounds: 10\n")
	if _, err := lab.NewSimulatorByYAML(ok, 1); err != nil {
		t.Fatalf("matching inline config rejected: %v", err)
	}

	// id 與名稱不符：拒絕
	mismatch := []byte("trial_name: raw\ntrial_id: 2\nmode: u64\nrounds: 10\n")
	if _, err := lab.NewSimulatorByYAML(mismatch, 1); err == nil {
		t.Fatal("mismatched inline config accepted")
	}

	// 未註冊的 id：拒絕
	unknown := []byte("trial_name: ghost\ntrial_id: 99\nmode: u64\nrounds: 10\n")
	if _, err := lab.NewSimulatorByYAML(unknown, 1); err == nil {
		t.Fatal("unknown inline config accepted")
	}
}

func TestSeedMakerDeterministicAndDistinct(t *testing.T) {
	a := newSeedMaker(42)
	b := newSeedMaker(42)
	seen := map[uint64]struct{}{}
	for i := 0; i < 1000; i++ {
		va, vb := a.next(), b.next()
		if va != vb {
			t.Fatalf("step %d: seed makers diverged", i)
		}
		if _, dup := seen[va]; dup {
			t.Fatalf("step %d: duplicate derived seed %x", i, va)
		}
		seen[va] = struct{}{}
	}
}

func TestGenPoolLeaseAndReturn(t *testing.T) {
	lab := newTestLab(t)
	p, err := lab.BuildPoolWithSeed(4, 99)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if p.PoolSize() != 4 || p.Available() != 4 {
		t.Fatalf("pool not primed: size=%d avail=%d", p.PoolSize(), p.Available())
	}

	err = p.Do(context.Background(), func(g *core.Core) error {
		if p.Inflight() != 1 {
			t.Fatalf("inflight = %d", p.Inflight())
		}
		g.Uint64()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Available() != 4 {
		t.Fatalf("generator not returned: avail=%d", p.Available())
	}
}

func TestGenPoolNonFatalErrKeepsGenerator(t *testing.T) {
	lab := newTestLab(t)
	p, _ := lab.BuildPoolWithSeed(1, 99)
	defer p.Close()

	want := errs.NewWarn("bad request")
	err := p.Do(context.Background(), func(g *core.Core) error { return want })
	if err != want {
		t.Fatalf("err rewritten: %v", err)
	}
	if p.ReBuild() != 0 || p.Available() != 1 {
		t.Fatalf("healthy generator discarded: rebuild=%d avail=%d", p.ReBuild(), p.Available())
	}
}

func TestGenPoolFatalErrTriggersRebuild(t *testing.T) {
	lab := newTestLab(t)
	p, _ := lab.BuildPoolWithSeed(1, 99)
	defer p.Close()

	if err := p.Do(context.Background(), func(g *core.Core) error {
		return errs.NewFatal("state corrupted")
	}); err == nil {
		t.Fatal("fatal error swallowed")
	}
	if p.ReBuild() != 1 || p.Fatals() != 1 {
		t.Fatalf("rebuild=%d fatals=%d", p.ReBuild(), p.Fatals())
	}
	if p.Available() != 1 {
		t.Fatalf("pool capacity not restored: avail=%d", p.Available())
	}
}

func TestGenPoolRecoversPanic(t *testing.T) {
	lab := newTestLab(t)
	p, _ := lab.BuildPoolWithSeed(1, 99)
	defer p.Close()

	err := p.Do(context.Background(), func(g *core.Core) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("panic not surfaced as error")
	}
	if p.Panics() != 1 || p.ReBuild() != 1 {
		t.Fatalf("panics=%d rebuild=%d", p.Panics(), p.ReBuild())
	}
}

func TestGenPoolClose(t *testing.T) {
	lab := newTestLab(t)
	p, _ := lab.BuildPoolWithSeed(2, 99)
	p.Close()

	if !p.Closed() {
		t.Fatal("pool should be closed")
	}
	if err := p.Do(context.Background(), func(g *core.Core) error { return nil }); err == nil {
		t.Fatal("Do after Close accepted")
	}
	m := p.Metrics()
	if !m.Closed || m.CloseAvail != 2 {
		t.Fatalf("close snapshot wrong: %+v", m)
	}
}

func TestDevSimulatorRestoreReproducesDraws(t *testing.T) {
	lab := newTestLab(t)
	dev, err := lab.NewDevSimulator(1, 123456789)
	if err != nil {
		t.Fatal(err)
	}

	first, err := dev.Draws(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.U64) != 32 {
		t.Fatalf("want 32 u64 draws, got %d", len(first.U64))
	}

	replay, err := dev.RestoreDraws(first.Before, 32)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.U64 {
		if first.U64[i] != replay.U64[i] {
			t.Fatalf("draw %d diverged after restore: %s != %s", i, first.U64[i], replay.U64[i])
		}
	}
	if first.After != replay.After {
		t.Fatal("after snapshot diverged")
	}
}

func TestDevSimulatorSimSnapshots(t *testing.T) {
	lab := newTestLab(t)
	dev, err := lab.NewDevSimulator(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := dev.Sim(10000)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Before == rep.After {
		t.Fatal("snapshot did not advance")
	}
	rep2, err := dev.RestoreSim(rep.Before, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if rep2.After != rep.After {
		t.Fatal("restored sim did not reproduce the sequence")
	}
	if rep2.Stat.Summary.UnitSum != rep.Stat.Summary.UnitSum {
		t.Fatal("restored sim produced different stats")
	}
}
