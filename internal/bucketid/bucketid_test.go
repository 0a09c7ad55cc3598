package bucketid

import "testing"

func TestDayIndex(t *testing.T) {
	tests := []struct {
		name string
		ts   int64
		want int64
	}{
		{name: "epoch", ts: 0, want: 0},
		{name: "last second of day 0", ts: 86399, want: 0},
		{name: "first second of day 1", ts: 86400, want: 1},
		{name: "mid day 1", ts: 90000, want: 1},
		{name: "before epoch", ts: -1, want: -1},
		{name: "exactly minus one day", ts: -86400, want: -1},
		{name: "realistic", ts: 1700000000, want: 19675},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayIndex(tt.ts); got != tt.want {
				t.Errorf("DayIndex(%d) = %d, want %d", tt.ts, got, tt.want)
			}
		})
	}
}

func TestHourIndex(t *testing.T) {
	tests := []struct {
		ts   int64
		want int64
	}{
		{ts: 0, want: 0},
		{ts: 3599, want: 0},
		{ts: 3600, want: 1},
		{ts: 90000, want: 25},
		{ts: 95000, want: 26},
		{ts: -1, want: -1},
	}

	for _, tt := range tests {
		if got := HourIndex(tt.ts); got != tt.want {
			t.Errorf("HourIndex(%d) = %d, want %d", tt.ts, got, tt.want)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	if got := DayStart(90000); got != 86400 {
		t.Errorf("DayStart(90000) = %d, want 86400", got)
	}
	if got := HourStart(95000); got != 93600 {
		t.Errorf("HourStart(95000) = %d, want 93600", got)
	}
	if got := DayStart(-1); got != -86400 {
		t.Errorf("DayStart(-1) = %d, want -86400", got)
	}
}

func TestIDs(t *testing.T) {
	pair := "0x397ff1542f962076d0bfe58ea045ffa2d347aca0"

	if got := FactoryDayID(1); got != "1" {
		t.Errorf("FactoryDayID(1) = %q, want %q", got, "1")
	}
	if got := PairDayID(pair, 1); got != pair+"-1" {
		t.Errorf("PairDayID = %q", got)
	}
	if got := PairHourID(pair, 25); got != pair+"-25" {
		t.Errorf("PairHourID = %q", got)
	}
	if got := TokenDayID("0xabc", 19675); got != "0xabc-19675" {
		t.Errorf("TokenDayID = %q", got)
	}
}

func TestSameBucketWithinPeriod(t *testing.T) {
	// Every timestamp inside one day maps to the same key.
	base := int64(19675) * DaySeconds
	want := PairDayID("p", DayIndex(base))
	for _, off := range []int64{0, 1, 3600, 43200, DaySeconds - 1} {
		if got := PairDayID("p", DayIndex(base+off)); got != want {
			t.Errorf("offset %d: got %q, want %q", off, got, want)
		}
	}
	if got := PairDayID("p", DayIndex(base+DaySeconds)); got == want {
		t.Errorf("next day shares key %q", got)
	}
}
