// Package pricing computes cart totals from a snapshot. Every function is
// pure and works in integer minor units.
package pricing

import (
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

// ItemTotal is the line's snapshot price times its quantity.
func ItemTotal(line cart.LineItem) money.Money {
	return line.UnitPrice.Times(line.Quantity)
}

// ModeTotal sums the lines acquired with mode.
func ModeTotal(snap cart.Snapshot, mode enums.AcquisitionMode) money.Money {
	total := money.Zero
	for _, line := range snap.Lines() {
		if line.Mode == mode {
			total = total.Add(ItemTotal(line))
		}
	}
	return total
}

// GrandTotal is the purchase total plus the borrow total.
func GrandTotal(snap cart.Snapshot) money.Money {
	return ModeTotal(snap, enums.AcquisitionModePurchase).Add(ModeTotal(snap, enums.AcquisitionModeBorrow))
}

// Line is a priced cart line.
type Line struct {
	cart.LineItem
	Total money.Money
}

// Summary captures every total computed from one snapshot.
type Summary struct {
	Version       uint64
	Lines         []Line
	PurchaseTotal money.Money
	BorrowTotal   money.Money
	GrandTotal    money.Money
	ItemCount     int
	Currency      money.Currency
}

// Summarize prices the snapshot in a single pass.
func Summarize(snap cart.Snapshot, currency money.Currency) Summary {
	lines := snap.Lines()
	summary := Summary{
		Version:  snap.Version(),
		Lines:    make([]Line, 0, len(lines)),
		Currency: currency,
	}
	for _, line := range lines {
		total := ItemTotal(line)
		switch line.Mode {
		case enums.AcquisitionModePurchase:
			summary.PurchaseTotal = summary.PurchaseTotal.Add(total)
		case enums.AcquisitionModeBorrow:
			summary.BorrowTotal = summary.BorrowTotal.Add(total)
		}
		summary.ItemCount += line.Quantity
		summary.Lines = append(summary.Lines, Line{LineItem: line, Total: total})
	}
	summary.GrandTotal = summary.PurchaseTotal.Add(summary.BorrowTotal)
	return summary
}

// Display renders the grand total in major units, e.g. "70.00".
func (s Summary) Display() string {
	return s.GrandTotal.Format(s.Currency)
}
