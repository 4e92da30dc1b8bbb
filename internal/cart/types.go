package cart

import (
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

// Key identifies a line. The same item may appear once per acquisition mode.
type Key struct {
	ItemID string
	Mode   enums.AcquisitionMode
}

// LineItem is one priced cart line. UnitPrice is captured when the line is
// first added and never refreshed from the catalog afterwards.
type LineItem struct {
	ItemID    string                `json:"itemId"`
	Mode      enums.AcquisitionMode `json:"mode"`
	Quantity  int                   `json:"quantity"`
	UnitPrice money.Money           `json:"unitPriceMinor"`
	Title     string                `json:"title,omitempty"`
	Author    string                `json:"author,omitempty"`
	AddedAt   time.Time             `json:"addedAt"`
}

func (l LineItem) Key() Key {
	return Key{ItemID: l.ItemID, Mode: l.Mode}
}

// Addition describes a line to merge into the cart.
type Addition struct {
	ItemID    string
	Mode      enums.AcquisitionMode
	Quantity  int
	UnitPrice money.Money
	Title     string
	Author    string
}

// Snapshot is an immutable view of a cart at one version.
type Snapshot struct {
	version uint64
	lines   []LineItem
}

// Lines returns a copy of the lines in insertion order.
func (s Snapshot) Lines() []LineItem {
	out := make([]LineItem, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s Snapshot) Len() int { return len(s.lines) }

func (s Snapshot) IsEmpty() bool { return len(s.lines) == 0 }

func (s Snapshot) Version() uint64 { return s.version }

// Get returns the line stored under key.
func (s Snapshot) Get(key Key) (LineItem, bool) {
	for _, line := range s.lines {
		if line.Key() == key {
			return line, true
		}
	}
	return LineItem{}, false
}

// Quantity totals the units across all lines.
func (s Snapshot) Quantity() int {
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// NewSnapshot builds a snapshot from lines, merging duplicate keys.
func NewSnapshot(version uint64, lines []LineItem) Snapshot {
	index := make(map[Key]int, len(lines))
	merged := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || line.ItemID == "" {
			continue
		}
		if i, ok := index[line.Key()]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(merged)
		merged = append(merged, line)
	}
	return Snapshot{version: version, lines: merged}
}
