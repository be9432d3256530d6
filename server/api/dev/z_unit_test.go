package dev

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/server/svrcfg"
)

func newTestCfg(t *testing.T) *svrcfg.SvrCfg {
	t.Helper()
	cfgs := fstest.MapFS{
		"raw.yaml": &fstest.MapFile{Data: []byte(
			"trial_name: raw\ntrial_id: 1\nmode: u64\nrounds: 100000\n")},
		"uniform.yaml": &fstest.MapFile{Data: []byte(
			"trial_name: uniform\ntrial_id: 2\nmode: float\nrounds: 100000\nseed: 42\n")},
	}
	lab, err := randlab.NewAuto(core.Default(), randlab.Configs(cfgs))
	if err != nil {
		t.Fatal(err)
	}
	return &svrcfg.SvrCfg{Lab: lab}
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	q := httptest.NewRequest("POST", "/dev/draws", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, q)
	return rr
}

func TestDevDrawsSnapTakesPrecedenceOverSeed(t *testing.T) {
	h := devDraws(newTestCfg(t))

	rr := postJSON(t, h, `{"tid":1,"rounds":5,"seed":"123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var first randlab.DevDrawReport
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if len(first.U64) != 5 || first.Before == "" {
		t.Fatalf("unexpected report: %+v", first)
	}

	// 帶著起始快照 + 不同 seed 回放：snap 優先，序列必須一致
	rr = postJSON(t, h, `{"tid":1,"rounds":5,"seed":"999","snap":"`+first.Before+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var replay randlab.DevDrawReport
	if err := json.Unmarshal(rr.Body.Bytes(), &replay); err != nil {
		t.Fatal(err)
	}
	for i := range first.U64 {
		if first.U64[i] != replay.U64[i] {
			t.Fatalf("draw %d diverged: %s != %s", i, first.U64[i], replay.U64[i])
		}
	}
	if first.After != replay.After {
		t.Fatal("after snapshot diverged on replay")
	}
}

func TestDevDrawsResolvesTrialByName(t *testing.T) {
	h := devDraws(newTestCfg(t))

	rr := postJSON(t, h, `{"trial":"UNIFORM","round":3,"seed":"7"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var rep randlab.DevDrawReport
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if len(rep.Floats) != 3 {
		t.Fatalf("want 3 float draws, got %+v", rep)
	}
}

func TestDevDrawsRequiresRound(t *testing.T) {
	h := devDraws(newTestCfg(t))

	rr := postJSON(t, h, `{"tid":1,"seed":"7"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestDevSimRestoreRoundTrip(t *testing.T) {
	h := devSim(newTestCfg(t))

	q := httptest.NewRequest("POST", "/dev/sim", strings.NewReader(`{"tid":2,"rounds":5000,"seed":"42"}`))
	rr := httptest.NewRecorder()
	h(rr, q)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var first randlab.DevSimReport
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}

	q = httptest.NewRequest("POST", "/dev/sim", strings.NewReader(
		`{"tid":2,"rounds":5000,"snap":"`+first.Before+`"}`))
	rr = httptest.NewRecorder()
	h(rr, q)
	if rr.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var replay randlab.DevSimReport
	if err := json.Unmarshal(rr.Body.Bytes(), &replay); err != nil {
		t.Fatal(err)
	}
	if replay.After != first.After {
		t.Fatal("restored sim did not reproduce the sequence")
	}
	if replay.Stat.Summary.UnitSum != first.Stat.Summary.UnitSum {
		t.Fatal("restored sim produced different stats")
	}
}

func TestDevMetaListsTrials(t *testing.T) {
	h := devMeta(newTestCfg(t))

	q := httptest.NewRequest("GET", "/dev/meta", nil)
	rr := httptest.NewRecorder()
	h(rr, q)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var sums []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &sums); err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("want 2 trials, got %d", len(sums))
	}
}
