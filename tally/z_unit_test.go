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

package tally

import "testing"

func TestIsPrime(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 13, 97, 7919}
	for _, p := range primes {
		if !IsPrime(p) {
			t.Errorf("IsPrime(%d) = false, want true", p)
		}
	}
	composites := []uint64{0, 1, 4, 6, 9, 25, 49, 7917}
	for _, c := range composites {
		if IsPrime(c) {
			t.Errorf("IsPrime(%d) = true, want false", c)
		}
	}
}

func TestCountBelow(t *testing.T) {
	// π(100) = 25；CountBelow 是開區間，101 才涵蓋 100 本身
	if got := CountBelow(101, IsPrime); got != 25 {
		t.Errorf("CountBelow(101, IsPrime) = %d, want 25", got)
	}
	if got := CountBelow(2, IsPrime); got != 0 {
		t.Errorf("CountBelow(2, IsPrime) = %d, want 0", got)
	}
	if got := CountBelow(3, IsPrime); got != 1 {
		t.Errorf("CountBelow(3, IsPrime) = %d, want 1", got)
	}
	if got := CountBelow(1000, nil); got != 0 {
		t.Errorf("CountBelow with nil pred = %d, want 0", got)
	}
	even := func(v uint64) bool { return v%2 == 0 }
	if got := CountBelow(10, even); got != 5 {
		t.Errorf("CountBelow(10, even) = %d, want 5", got)
	}
}
