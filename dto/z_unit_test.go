package dto

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeSampleRequestGet(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/sample?n=16&mode=u64&seed=123456789", nil)
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.N != 16 || req.Mode != "u64" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Seed == nil || *req.Seed != 123456789 {
		t.Fatalf("seed not parsed: %+v", req.Seed)
	}
}

func TestDecodeSampleRequestSeedOmitted(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/sample?n=4&mode=float", nil)
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Seed != nil {
		t.Fatal("seed should stay nil when omitted")
	}
}

func TestDecodeSampleRequestPost(t *testing.T) {
	body := `{"n":8,"mode":"float","seed":42}`
	r := httptest.NewRequest("POST", "/v1/sample", strings.NewReader(body))
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.N != 8 || req.Mode != "float" || req.Seed == nil || *req.Seed != 42 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSampleRequestRejectsUnknownFields(t *testing.T) {
	body := `{"n":8,"mode":"u64","bogus":1}`
	r := httptest.NewRequest("POST", "/v1/sample", strings.NewReader(body))
	if _, err := DecodeSampleRequest(r); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestDecodeRandIntRequestGet(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/randint?n=10&lo=-5&hi=5", nil)
	req, err := DecodeRandIntRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.N != 10 || req.Lo != -5 || req.Hi != 5 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeRandIntRequestBadNumber(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/randint?n=ten", nil)
	if _, err := DecodeRandIntRequest(r); err == nil {
		t.Fatal("garbage n accepted")
	}
}

func TestDecodeSimRequestGet(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/sim?tid=3&round=5000&workers=4&seed=99", nil)
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.TID != 3 || req.Round != 5000 || req.Workers != 4 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Seed == nil || *req.Seed != 99 {
		t.Fatalf("seed not parsed: %+v", req.Seed)
	}
}

func TestDecodeSimRequestBadNumber(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/sim?tid=x&round=100", nil)
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatal("garbage tid accepted")
	}
}

func TestDecodeSimRequestPost(t *testing.T) {
	body := `{"tid":1,"round":200,"seed":7}`
	r := httptest.NewRequest("POST", "/v1/sim", strings.NewReader(body))
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.TID != 1 || req.Round != 200 || req.Seed == nil || *req.Seed != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSimRequestRejectsUnknownFields(t *testing.T) {
	body := `{"tid":1,"round":200,"bogus":true}`
	r := httptest.NewRequest("POST", "/v1/sim", strings.NewReader(body))
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestDecodeShuffleRequestPostOnly(t *testing.T) {
	get := httptest.NewRequest("GET", "/v1/shuffle", nil)
	if _, err := DecodeShuffleRequest(get); err == nil {
		t.Fatal("GET shuffle accepted")
	}

	body := `{"values":[1,2,3],"seed":7}`
	post := httptest.NewRequest("POST", "/v1/shuffle", strings.NewReader(body))
	req, err := DecodeShuffleRequest(post)
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Values) != 3 || req.Seed == nil || *req.Seed != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
}
