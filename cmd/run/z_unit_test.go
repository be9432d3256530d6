package main

import "testing"

func TestResolveSeedExplicit(t *testing.T) {
	s, err := resolveSeed("123456789")
	if err != nil {
		t.Fatal(err)
	}
	if s != 123456789 {
		t.Fatalf("got %d", s)
	}
}

func TestResolveSeedZeroIsLegal(t *testing.T) {
	s, err := resolveSeed("0")
	if err != nil {
		t.Fatal(err)
	}
	if s != 0 {
		t.Fatalf("seed 0 rewritten to %d", s)
	}
}

func TestResolveSeedMaxUint64(t *testing.T) {
	s, err := resolveSeed("18446744073709551615")
	if err != nil {
		t.Fatal(err)
	}
	if s != ^uint64(0) {
		t.Fatalf("got %d", s)
	}
}

func TestResolveSeedGarbage(t *testing.T) {
	if _, err := resolveSeed("not-a-number"); err == nil {
		t.Fatal("garbage seed accepted")
	}
	if _, err := resolveSeed("-1"); err == nil {
		t.Fatal("negative seed accepted")
	}
}

func TestResolveSeedAuto(t *testing.T) {
	if _, err := resolveSeed(""); err != nil {
		t.Fatal(err)
	}
}
