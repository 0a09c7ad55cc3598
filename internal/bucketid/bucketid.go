// Package bucketid derives the period index and storage key of rollup buckets.
//
// Period indexes use floor division so timestamps before the epoch still map
// to the bucket that contains them.
package bucketid

import "strconv"

const (
	// DaySeconds is the length of a day bucket.
	DaySeconds int64 = 86400
	// HourSeconds is the length of an hour bucket.
	HourSeconds int64 = 3600
)

// DayIndex returns floor(ts / 86400).
func DayIndex(ts int64) int64 {
	return floorDiv(ts, DaySeconds)
}

// HourIndex returns floor(ts / 3600).
func HourIndex(ts int64) int64 {
	return floorDiv(ts, HourSeconds)
}

// DayStart returns the first second of the day containing ts.
func DayStart(ts int64) int64 {
	return DayIndex(ts) * DaySeconds
}

// HourStart returns the first second of the hour containing ts.
func HourStart(ts int64) int64 {
	return HourIndex(ts) * HourSeconds
}

// FactoryDayID returns the key of a factory day bucket: the bare day index.
func FactoryDayID(dayIndex int64) string {
	return strconv.FormatInt(dayIndex, 10)
}

// PairDayID returns "<pair>-<dayIndex>".
func PairDayID(pairID string, dayIndex int64) string {
	return compose(pairID, dayIndex)
}

// PairHourID returns "<pair>-<hourIndex>".
func PairHourID(pairID string, hourIndex int64) string {
	return compose(pairID, hourIndex)
}

// TokenDayID returns "<token>-<dayIndex>".
func TokenDayID(tokenID string, dayIndex int64) string {
	return compose(tokenID, dayIndex)
}

func compose(dim string, index int64) string {
	return dim + "-" + strconv.FormatInt(index, 10)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
