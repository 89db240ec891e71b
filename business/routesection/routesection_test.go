package routesection

import (
	"testing"

	"github.com/matryer/is"
)

func TestSectionForEighteenStopTrip(t *testing.T) {
	is := is.New(t)
	const stopCount = 18
	tests := []struct {
		index int
		want  Section
	}{
		{0, Beginning},
		{4, Beginning},
		{5, Middle},
		{12, Middle},
		{13, End},
		{17, End},
	}
	for _, tt := range tests {
		is.Equal(SectionFor(stopCount, tt.index), tt.want)
	}
}

func TestSectionForSmallTrip(t *testing.T) {
	// stopCount/3 rounds toward zero, so k can be less than 5 for short trips.
	const stopCount = 6 // k = min(5, 2) = 2
	tests := []struct {
		index int
		want  Section
	}{
		{0, Beginning},
		{1, Beginning},
		{2, Middle},
		{3, Middle},
		{4, End},
		{5, End},
	}
	for _, tt := range tests {
		if got := SectionFor(stopCount, tt.index); got != tt.want {
			t.Errorf("SectionFor(%d, %d) = %v, want %v", stopCount, tt.index, got, tt.want)
		}
	}
}
