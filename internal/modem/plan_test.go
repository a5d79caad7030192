package modem

import "testing"

func TestNewPlan_Partition(t *testing.T) {
	p, err := NewPlan(64, 16, 4)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	if p.GuardLo != 8 || p.GuardHi != 8 {
		t.Errorf("guards = %d/%d, want 8/8", p.GuardLo, p.GuardHi)
	}
	if p.SymbolLen() != 80 {
		t.Errorf("SymbolLen() = %d, want 80", p.SymbolLen())
	}

	// Every bin is exactly one of: guard, DC, pilot, data.
	role := make(map[int]string)
	for _, k := range p.PilotBins {
		role[k] = "pilot"
	}
	for _, k := range p.DataBins {
		if prev, ok := role[k]; ok {
			t.Fatalf("bin %d assigned to both %s and data", k, prev)
		}
		role[k] = "data"
	}

	dc := p.FFTSize / 2
	for k := 0; k < p.FFTSize; k++ {
		inGuard := k <= p.GuardLo || k >= p.FFTSize-p.GuardHi
		_, assigned := role[k]
		switch {
		case k == dc:
			if assigned {
				t.Errorf("DC bin %d assigned to %s", k, role[k])
			}
		case inGuard:
			if assigned {
				t.Errorf("guard bin %d assigned to %s", k, role[k])
			}
		default:
			if !assigned {
				t.Errorf("usable bin %d unassigned", k)
			}
		}
	}

	if p.NumData() != 42 {
		t.Errorf("NumData() = %d, want 42", p.NumData())
	}
	if p.NumPilots() != 4 {
		t.Errorf("NumPilots() = %d, want 4", p.NumPilots())
	}
}

func TestNewPlan_Deterministic(t *testing.T) {
	a, err := NewPlan(128, 32, 6)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	b, _ := NewPlan(128, 32, 6)

	if len(a.DataBins) != len(b.DataBins) || len(a.PilotBins) != len(b.PilotBins) {
		t.Fatal("plans differ in size")
	}
	for i := range a.PilotBins {
		if a.PilotBins[i] != b.PilotBins[i] {
			t.Errorf("pilot %d: %d != %d", i, a.PilotBins[i], b.PilotBins[i])
		}
	}
	for i := range a.DataBins {
		if a.DataBins[i] != b.DataBins[i] {
			t.Errorf("data %d: %d != %d", i, a.DataBins[i], b.DataBins[i])
		}
	}
}

func TestNewPlan_PilotSpacing(t *testing.T) {
	p, err := NewPlan(64, 16, 4)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	// guard+1 + (i+1)*spacing with spacing = 47/5 = 9.
	want := []int{18, 27, 36, 45}
	for i, k := range p.PilotBins {
		if k != want[i] {
			t.Errorf("pilot %d at bin %d, want %d", i, k, want[i])
		}
	}
}

func TestNewPlan_PilotAvoidsDC(t *testing.T) {
	// A single pilot would land exactly on the DC null; it must move to
	// the adjacent bin instead, leaving the null empty.
	cases := []struct {
		fft, cp, pilots int
		want            int
	}{
		{64, 16, 1, 33},
		{16, 4, 1, 9},
	}
	for _, tc := range cases {
		p, err := NewPlan(tc.fft, tc.cp, tc.pilots)
		if err != nil {
			t.Fatalf("NewPlan(%d, %d, %d): %v", tc.fft, tc.cp, tc.pilots, err)
		}
		if p.PilotBins[0] != tc.want {
			t.Errorf("NewPlan(%d, %d, %d): pilot at bin %d, want %d",
				tc.fft, tc.cp, tc.pilots, p.PilotBins[0], tc.want)
		}
		for _, k := range p.DataBins {
			if k == tc.fft/2 {
				t.Errorf("NewPlan(%d, %d, %d): DC bin carries data", tc.fft, tc.cp, tc.pilots)
			}
		}
	}
}

func TestNewPlan_Errors(t *testing.T) {
	cases := []struct {
		name            string
		fft, cp, pilots int
	}{
		{"fft not power of 2", 48, 8, 2},
		{"fft too small", 4, 1, 0},
		{"cp negative", 64, -1, 2},
		{"cp too long", 64, 64, 2},
		{"pilots negative", 64, 16, -1},
		{"pilots consume all bins", 64, 16, 47},
		{"pilots too dense", 64, 16, 23},
	}
	for _, tc := range cases {
		if _, err := NewPlan(tc.fft, tc.cp, tc.pilots); err == nil {
			t.Errorf("%s: NewPlan(%d, %d, %d) accepted", tc.name, tc.fft, tc.cp, tc.pilots)
		}
	}
}

func TestNewPlan_ZeroPilots(t *testing.T) {
	p, err := NewPlan(64, 0, 0)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if p.NumPilots() != 0 {
		t.Errorf("NumPilots() = %d, want 0", p.NumPilots())
	}
	if p.NumData() != 46 {
		t.Errorf("NumData() = %d, want 46", p.NumData())
	}
}
