package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zintix-labs/randlab/plan"
)

func sampleReport() *DrawReport {
	collect := make([]int, DistBucketCount)
	for i := range collect {
		collect[i] = 1000
	}
	return &DrawReport{
		Summary: &SummaryReport{
			TrialName:   "fixture",
			TrialID:     1,
			Mode:        plan.ModeU64,
			Rounds:      10000,
			UnitSum:     5000,
			UnitSqSum:   3333,
			BitsSampled: true,
			LowBitOnes:  5000,
			TopBitOnes:  5000,
		},
		Dist: &DistReport{
			Bucket:  BucketLabels(),
			Collect: collect,
		},
	}
}

func TestDoneComputesSummary(t *testing.T) {
	r := sampleReport()
	r.Done()

	if r.Summary.Mean != 0.5 {
		t.Fatalf("mean = %v, want 0.5", r.Summary.Mean)
	}
	if r.Summary.LowBitRate != 0.5 || r.Summary.TopBitRate != 0.5 {
		t.Fatalf("bit rates = %v/%v", r.Summary.LowBitRate, r.Summary.TopBitRate)
	}
	if r.Summary.MeanCI.Lo > 0.5 || r.Summary.MeanCI.Hi < 0.5 {
		t.Fatalf("CI %v does not cover the mean", r.Summary.MeanCI)
	}

	// 完全均勻的落點：卡方為 0，p-value 為 1
	if r.Dist.ChiSq != 0 {
		t.Fatalf("chisq = %v, want 0", r.Dist.ChiSq)
	}
	if r.Dist.PValue != 1 {
		t.Fatalf("p-value = %v, want 1", r.Dist.PValue)
	}
	for _, f := range r.Dist.Freq {
		if f != 0.1 {
			t.Fatalf("freq = %v, want 0.1", f)
		}
	}
}

func TestDoneIsIdempotent(t *testing.T) {
	r := sampleReport()
	r.Done()
	mean := r.Summary.Mean
	r.Done()
	if r.Summary.Mean != mean {
		t.Fatalf("second Done changed results")
	}
}

func TestChiSquareRejectsSkew(t *testing.T) {
	r := sampleReport()
	// 全部落在同一桶：p-value 應趨近 0
	for i := range r.Dist.Collect {
		r.Dist.Collect[i] = 0
	}
	r.Dist.Collect[0] = r.Summary.Rounds
	r.Done()
	if r.Dist.PValue > 1e-6 {
		t.Fatalf("skewed distribution got p=%v", r.Dist.PValue)
	}
}

func TestRenders(t *testing.T) {
	r := sampleReport()

	var jbuf bytes.Buffer
	if err := r.WriteWith(&jbuf, &JsonDrawReportRender{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(jbuf.String(), `"TrialName":"fixture"`) {
		t.Fatalf("json render missing fields: %s", jbuf.String())
	}

	var ybuf bytes.Buffer
	if err := r.WriteWith(&ybuf, &YAMLDrawReportRender{}); err != nil {
		t.Fatal(err)
	}
	// 一維陣列應為 flow style
	if !strings.Contains(ybuf.String(), "[") {
		t.Fatalf("yaml render lost flow style: %s", ybuf.String())
	}
}

func TestFmtTable(t *testing.T) {
	r := sampleReport()
	r.Done()
	keys, msg := r.fmtBasic()
	out := fmtTable(r.Summary.TrialName, keys, msg)
	for _, k := range keys {
		if !strings.Contains(out, k) {
			t.Fatalf("table missing row %q:\n%s", k, out)
		}
	}
}
