package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/dto"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/server/svrcfg"
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

func newTestLab(t *testing.T) *randlab.Lab {
	t.Helper()
	lab, err := randlab.NewAuto(core.Default(), randlab.Configs(testCfgFS()))
	if err != nil {
		t.Fatal(err)
	}
	return lab
}

func newTestSampleHandler(t *testing.T) *SampleHandler {
	t.Helper()
	sCfg := &svrcfg.SvrCfg{PoolSize: 2, Lab: newTestLab(t)}
	sh, err := NewSampleHandler(sCfg)
	if err != nil {
		t.Fatal(err)
	}
	return sh
}

func TestSampleSameSeedSameBody(t *testing.T) {
	sh := newTestSampleHandler(t)

	serve := func() *httptest.ResponseRecorder {
		q := httptest.NewRequest("GET", "/v1/sample?n=16&mode=u64&seed=123456789", nil)
		rr := httptest.NewRecorder()
		sh.Sample(rr, q)
		return rr
	}

	a, b := serve(), serve()
	if a.Code != http.StatusOK || b.Code != http.StatusOK {
		t.Fatalf("status: %d / %d", a.Code, b.Code)
	}
	if a.Body.String() != b.Body.String() {
		t.Fatal("same seed produced different response bodies")
	}

	var resp dto.SampleResult
	if err := json.Unmarshal(a.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.U64) != 16 {
		t.Fatalf("want 16 draws, got %d", len(resp.U64))
	}
}

func TestSampleUnseededLeasesFromPool(t *testing.T) {
	sh := newTestSampleHandler(t)

	q := httptest.NewRequest("GET", "/v1/sample?n=3&mode=float", nil)
	rr := httptest.NewRecorder()
	sh.Sample(rr, q)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp dto.SampleResult
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Floats) != 3 || resp.Seed != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if sh.pool.Available() != sh.pool.PoolSize() {
		t.Fatal("leased generator not returned to pool")
	}
}

func TestSampleRejectsOversizedN(t *testing.T) {
	sh := newTestSampleHandler(t)

	q := httptest.NewRequest("GET", "/v1/sample?n=100001", nil)
	rr := httptest.NewRecorder()
	sh.Sample(rr, q)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRandIntRejectsInvalidRange(t *testing.T) {
	sh := newTestSampleHandler(t)

	q := httptest.NewRequest("GET", "/v1/randint?n=3&lo=5&hi=1", nil)
	rr := httptest.NewRecorder()
	sh.RandInt(rr, q)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestShuffleSameSeedSameOrder(t *testing.T) {
	sh := newTestSampleHandler(t)

	serve := func() *httptest.ResponseRecorder {
		body := `{"values":[1,2,3,4,5,6,7,8],"seed":99}`
		q := httptest.NewRequest("POST", "/v1/shuffle", strings.NewReader(body))
		rr := httptest.NewRecorder()
		sh.Shuffle(rr, q)
		return rr
	}

	a, b := serve(), serve()
	if a.Code != http.StatusOK || b.Code != http.StatusOK {
		t.Fatalf("status: %d / %d", a.Code, b.Code)
	}
	if a.Body.String() != b.Body.String() {
		t.Fatal("same seed produced different permutations")
	}
}

func TestSimSameSeedSameStats(t *testing.T) {
	sh, err := NewSimHandler(newTestLab(t))
	if err != nil {
		t.Fatal(err)
	}

	serve := func() *httptest.ResponseRecorder {
		q := httptest.NewRequest("GET", "/v1/sim?tid=1&round=1000&seed=7", nil)
		rr := httptest.NewRecorder()
		sh.Sim(rr, q)
		return rr
	}

	a, b := serve(), serve()
	if a.Code != http.StatusOK || b.Code != http.StatusOK {
		t.Fatalf("status: %d / %d, body = %s", a.Code, b.Code, a.Body.String())
	}
	if a.Body.String() != b.Body.String() {
		t.Fatal("same seed produced different sim reports")
	}
}

func TestSimRejectsUnknownJSONFields(t *testing.T) {
	sh, err := NewSimHandler(newTestLab(t))
	if err != nil {
		t.Fatal(err)
	}

	body := `{"tid":1,"round":100,"bogus":true}`
	q := httptest.NewRequest("POST", "/v1/sim", strings.NewReader(body))
	rr := httptest.NewRecorder()
	sh.Sim(rr, q)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSimRejectsOversizedRound(t *testing.T) {
	sh, err := NewSimHandler(newTestLab(t))
	if err != nil {
		t.Fatal(err)
	}

	q := httptest.NewRequest("GET", "/v1/sim?tid=1&round=1000001", nil)
	rr := httptest.NewRecorder()
	sh.Sim(rr, q)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestPoolMetricsGetOnly(t *testing.T) {
	sh := newTestSampleHandler(t)

	q := httptest.NewRequest("POST", "/v1/pool", nil)
	rr := httptest.NewRecorder()
	sh.PoolMetrics(rr, q)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}

	q = httptest.NewRequest("GET", "/v1/pool", nil)
	rr = httptest.NewRecorder()
	sh.PoolMetrics(rr, q)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var m randlab.GenPoolMetrics
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.PoolSize != 2 {
		t.Fatalf("pool size = %d", m.PoolSize)
	}
}
