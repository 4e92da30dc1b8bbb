package enums

import "slices"

// PaymentProvider routes a charge to one of the supported mobile money networks.
type PaymentProvider string

const (
	PaymentProviderAirtel PaymentProvider = "airtel"
	PaymentProviderMTN    PaymentProvider = "mtn"
)

var validPaymentProviders = []PaymentProvider{
	PaymentProviderAirtel,
	PaymentProviderMTN,
}

func (v PaymentProvider) String() string { return string(v) }

func (v PaymentProvider) IsValid() bool { return slices.Contains(validPaymentProviders, v) }

func ParsePaymentProvider(value string) (PaymentProvider, error) {
	return parseEnum(validPaymentProviders, "payment provider", value)
}

// TransactionPrefix is the provider's transaction reference prefix.
func (v PaymentProvider) TransactionPrefix() string {
	switch v {
	case PaymentProviderAirtel:
		return "AT"
	case PaymentProviderMTN:
		return "MTN"
	default:
		return "TX"
	}
}
