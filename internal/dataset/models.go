package dataset

import (
	"time"

	"github.com/guregu/null"
)

// TimestampLayout is the fixed format of the noted_date column.
const TimestampLayout = "2006-01-02 15:04:05"

// Column names of the persisted table.
const (
	ColumnTimestamp   = "noted_date"
	ColumnTemperature = "temp"
	ColumnHumidity    = "humidity"
	ColumnRoomID      = "room_id"
	ColumnPlacement   = "out/in"

	// LegacyColumnRoomID is the slash-joined export name of room_id.
	LegacyColumnRoomID = "room_id/id"
)

// Reading is one cleaned sensor sample
type Reading struct {
	Timestamp   time.Time
	Temperature float64
	Humidity    null.Float
	RoomID      null.String
	Placement   null.String
}

// Dataset is the cleaned, time-ordered series produced by Normalize.
// It is built fresh for every pipeline run and never modified afterwards.
type Dataset struct {
	Readings []Reading

	// Dropped counts input rows discarded for a missing timestamp or
	// temperature.
	Dropped int

	// Offset is the anchoring shift added to every timestamp.
	Offset time.Duration
}

// Len returns the number of readings.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Readings)
}

// Empty reports whether there is nothing to show.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}
