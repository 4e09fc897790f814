package payment

import (
	"context"
	"fmt"
)

// Provider is the external payment gateway boundary. CreateOrder starts the
// two-phase flow and returns the order the payer must approve; CaptureOrder
// finalizes the charge and returns the provider's status string verbatim.
type Provider interface {
	CreateOrder(ctx context.Context, amount float64, currency, returnURL string) (*ProviderOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (string, error)
}

type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type ProviderOrder struct {
	ID    string `json:"id"`
	Links []Link `json:"links"`
}

// ApproveLink finds the link the payer is redirected to. The provider
// contract guarantees one, but a missing link is still an error rather than
// an empty redirect.
func (o *ProviderOrder) ApproveLink() (string, error) {
	for _, link := range o.Links {
		if link.Rel == "approve" {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("order %s has no approve link", o.ID)
}
