package enums

import "slices"

// AcquisitionMode is how a cart line is acquired: bought outright or borrowed for a fixed term.
type AcquisitionMode string

const (
	AcquisitionModePurchase AcquisitionMode = "purchase"
	AcquisitionModeBorrow   AcquisitionMode = "borrow"
)

var validAcquisitionModes = []AcquisitionMode{
	AcquisitionModePurchase,
	AcquisitionModeBorrow,
}

func (v AcquisitionMode) String() string { return string(v) }

func (v AcquisitionMode) IsValid() bool { return slices.Contains(validAcquisitionModes, v) }

func ParseAcquisitionMode(value string) (AcquisitionMode, error) {
	return parseEnum(validAcquisitionModes, "acquisition mode", value)
}

// ItemEvent returns the analytics event recorded when a line of this mode settles.
func (v AcquisitionMode) ItemEvent() EventType {
	if v == AcquisitionModeBorrow {
		return EventBookBorrow
	}
	return EventBookPurchase
}
