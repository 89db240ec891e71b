package eventtype

import "testing"

func TestPairGetSetIsIndependentPerEventType(t *testing.T) {
	var p Pair[int]
	p.Set(Arrival, 1)
	p.Set(Departure, 2)

	if got := p.Get(Arrival); got != 1 {
		t.Errorf("Get(Arrival) = %d, want 1", got)
	}
	if got := p.Get(Departure); got != 2 {
		t.Errorf("Get(Departure) = %d, want 2", got)
	}
}

func TestAllReturnsBothVariants(t *testing.T) {
	all := All()
	if len(all) != 2 || all[0] != Arrival || all[1] != Departure {
		t.Fatalf("All() = %v, want [Arrival, Departure]", all)
	}
}
