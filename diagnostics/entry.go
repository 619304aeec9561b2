// Package diagnostics collects and persists the diagnostics reported by
// codecs. A Collector keeps them in memory. A Recorder stores them in SQLite
// or ClickHouse so that they can be inspected after the process ends.
package diagnostics

import (
	"time"

	"github.com/sarchlab/propjson/serialization"
)

// TableName is the table diagnostics are stored in.
const TableName = "diagnostics"

// Entry is the stored form of a diagnostic. Its fields are the columns of the
// diagnostics table, in order.
type Entry struct {
	Session  string
	Seq      int64
	Time     int64
	Kind     string
	Type     string
	Property string
	Message  string
}

// entryOf flattens a diagnostic.
func entryOf(
	session string,
	seq int64,
	at time.Time,
	d serialization.Diagnostic,
) Entry {
	return Entry{
		Session:  session,
		Seq:      seq,
		Time:     at.UnixNano(),
		Kind:     d.Kind.String(),
		Type:     d.Type,
		Property: d.Property,
		Message:  d.Message,
	}
}
