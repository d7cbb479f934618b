package analysis

import (
	"testing"

	"github.com/ademuri/song-velocity/internal/panel"
)

func TestVelocity(t *testing.T) {
	p := panel.Panel{
		plays("Austin", "Song A", "1", week(2), 5),
		plays("Austin", "Song A", "1", week(0), 10),
		plays("Austin", "Song A", "1", week(1), 0),
		listeners("Austin", "Song A", "1", week(0), 4),
	}
	rows := Velocity(p)
	if len(rows) != 4 {
		t.Fatalf("len(Velocity()) = %d, want 4", len(rows))
	}

	// listeners sorts before plays.
	if rows[0].Measure != string(panel.MeasureListeners) || rows[0].Delta != nil {
		t.Errorf("rows[0] = %+v, want a listeners row without delta", rows[0])
	}
	first, second, third := rows[1], rows[2], rows[3]
	if first.Delta != nil || first.PctDelta != nil {
		t.Errorf("first point = %+v, want no delta", first)
	}
	if second.Delta == nil || *second.Delta != -10 {
		t.Errorf("second delta = %v, want -10", second.Delta)
	}
	assertFloatPtr(t, "second pct", second.PctDelta, -100)
	if third.Delta == nil || *third.Delta != 5 {
		t.Errorf("third delta = %v, want 5", third.Delta)
	}
	if third.PctDelta != nil {
		t.Errorf("third pct = %v, want nil after a zero", *third.PctDelta)
	}
}
