package statistics

import (
	"bytes"
	"testing"

	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/routesection"
)

func TestGobCodecRoundTripsSpecificAndGeneral(t *testing.T) {
	tree := NewTree()
	rvd := tree.routeVariant("R1", "1", []string{"S1", "S2", "S3"})
	rvd.GeneralDelay.Get(eventtype.Arrival)[0] = CurveData{
		Curve:      semiSpecificCurve(t, []float64{1, 2, 3}),
		Precision:  SemiSpecific,
		SampleSize: 20,
	}
	csData, err := BuildConditionalCurveSet(evenlySpacedPairs(21))
	if err != nil {
		t.Fatalf("BuildConditionalCurveSet: %v", err)
	}
	rvd.CurveSets.Get(eventtype.Arrival)[CurveSetKey{StartIndex: 0, EndIndex: 2}] = *csData

	key := DefaultCurveKey{RouteType: 3, Section: routesection.Middle, SlotID: 0, Event: eventtype.Arrival}
	tree.General[key] = semiSpecificCurve(t, []float64{4, 5, 6})

	var buf bytes.Buffer
	codec := NewGobCodec()
	if err := codec.Save(tree, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := codec.Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	loadedRVD := loaded.Specific["R1"]["1"]
	if loadedRVD == nil {
		t.Fatal("expected route variant R1/1 to survive the round trip")
	}
	if got := loadedRVD.GeneralDelay.Get(eventtype.Arrival)[0]; got.Curve == nil || got.SampleSize != 20 {
		t.Errorf("marginal curve did not round-trip: %+v", got)
	}
	loadedCS := loadedRVD.CurveSets.Get(eventtype.Arrival)[CurveSetKey{StartIndex: 0, EndIndex: 2}]
	if loadedCS.CurveSet == nil || loadedCS.CurveSet.Len() == 0 {
		t.Error("conditional curve set did not round-trip")
	}
	if loaded.General[key] == nil {
		t.Error("general fallback curve did not round-trip")
	}
}

func TestGobCodecRejectsUnknownFormatByte(t *testing.T) {
	codec := NewGobCodec()
	if _, err := codec.Load(bytes.NewReader([]byte{9, 0, 0})); err == nil {
		t.Fatal("expected an error for an unrecognized format byte")
	}
}

func TestGobCodecRejectsEmptyInput(t *testing.T) {
	codec := NewGobCodec()
	if _, err := codec.Load(bytes.NewReader(nil)); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
