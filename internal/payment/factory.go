package payment

import "fmt"

// Names of the configured gateway adapters. Construction happens in the cmd
// wiring, since each adapter carries its own dependencies (redis token cache
// for paypal, API key for stripe).
const (
	ProviderPayPal = "paypal"
	ProviderStripe = "stripe"
)

func ValidateProviderName(name string) error {
	switch name {
	case ProviderPayPal, ProviderStripe:
		return nil
	default:
		return fmt.Errorf("unknown payment provider %q", name)
	}
}
