package dataset

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null"
)

// parseLayout accepts zero-padded and unpadded month, day and hour.
const parseLayout = "2006-1-2 15:04:05"

type candidate struct {
	ts          time.Time
	tsValid     bool
	temperature null.Float
	humidity    null.Float
	roomID      null.String
	placement   null.String
}

// Normalize cleans a raw table into a Dataset anchored on today.
//
// Cells that fail to parse become null and rows without a timestamp or
// temperature are dropped; Normalize never fails. Timestamps are held as
// zone-less wall-clock values in UTC.
func Normalize(raw *RawTable, today time.Time) *Dataset {
	ds := &Dataset{}
	if raw == nil || raw.Len() == 0 {
		return ds
	}

	rows := make([]candidate, raw.Len())

	for i, cell := range raw.Column(ColumnTimestamp) {
		if ts, err := time.ParseInLocation(parseLayout, strings.TrimSpace(cell), time.UTC); err == nil {
			rows[i].ts = ts
			rows[i].tsValid = true
		}
	}

	ds.Offset = anchorOffset(rows, today)
	if ds.Offset > 0 {
		for i := range rows {
			if rows[i].tsValid {
				rows[i].ts = rows[i].ts.Add(ds.Offset)
			}
		}
	}

	raw = raw.Rename(LegacyColumnRoomID, ColumnRoomID)

	for i, cell := range raw.Column(ColumnTemperature) {
		rows[i].temperature = parseNumber(cell)
	}
	for i, cell := range raw.Column(ColumnHumidity) {
		rows[i].humidity = parseNumber(cell)
	}
	for i, cell := range raw.Column(ColumnRoomID) {
		rows[i].roomID = parseText(cell)
	}
	for i, cell := range raw.Column(ColumnPlacement) {
		rows[i].placement = parseText(cell)
	}

	ds.Readings = make([]Reading, 0, len(rows))
	for _, r := range rows {
		if !r.tsValid || !r.temperature.Valid {
			ds.Dropped++
			continue
		}
		ds.Readings = append(ds.Readings, Reading{
			Timestamp:   r.ts,
			Temperature: r.temperature.Float64,
			Humidity:    r.humidity,
			RoomID:      r.roomID,
			Placement:   r.placement,
		})
	}

	slices.SortStableFunc(ds.Readings, func(a, b Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return ds
}

// anchorOffset returns the whole-day shift that moves the earliest valid
// timestamp's date onto today's date, or zero when no shift applies.
func anchorOffset(rows []candidate, today time.Time) time.Duration {
	var first time.Time
	found := false
	for _, r := range rows {
		if r.tsValid && (!found || r.ts.Before(first)) {
			first = r.ts
			found = true
		}
	}
	if !found {
		return 0
	}

	delta := Midnight(today).Sub(Midnight(first))
	if delta <= 0 {
		return 0
	}
	return delta
}

// Midnight returns the start of t's calendar date as a UTC wall-clock value.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseNumber(cell string) null.Float {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func parseText(cell string) null.String {
	if cell == "" || cell == "NaN" {
		return null.String{}
	}
	return null.StringFrom(cell)
}
