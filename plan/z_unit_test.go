package plan

import "testing"

func TestTrialPlanYAML(t *testing.T) {
	raw := []byte(`
trial_name: Decile Check
trial_id: 1001
mode: RandInt
rounds: 100000
lo: 0
hi: 9
`)
	tp, err := GetTrialPlanByYAML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if tp.TrialID != 1001 || tp.Mode != ModeRandInt || tp.Rounds != 100000 {
		t.Fatalf("unexpected plan: %+v", tp)
	}
	if tp.Seed != nil {
		t.Fatalf("seed should stay nil when omitted")
	}
}

func TestTrialPlanJSON(t *testing.T) {
	raw := []byte(`{"trial_name":"raw","trial_id":1,"mode":"u64","rounds":10,"seed":123456789}`)
	tp, err := GetTrialPlanByJSON(raw)
	if err != nil {
		t.Fatal(err)
	}
	if tp.Seed == nil || *tp.Seed != 123456789 {
		t.Fatalf("seed not parsed: %+v", tp.Seed)
	}
}

func TestTrialPlanValid(t *testing.T) {
	bad := []string{
		`{"trial_name":"","trial_id":1,"mode":"u64","rounds":10}`,
		`{"trial_name":"x","trial_id":1,"mode":"dice","rounds":10}`,
		`{"trial_name":"x","trial_id":1,"mode":"u64","rounds":0}`,
		`{"trial_name":"x","trial_id":1,"mode":"randint","rounds":10,"lo":5,"hi":3}`,
	}
	for i, raw := range bad {
		if _, err := GetTrialPlanByJSON([]byte(raw)); err == nil {
			t.Fatalf("case %d: invalid plan accepted", i)
		}
	}
}
