package stripeprov

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/payment"
)

// Provider adapts Stripe Checkout to the two-phase provider contract: the
// session URL plays the role of the approval link and the session's
// manual-capture PaymentIntent is captured on the second phase.
type Provider struct {
	client *client.API
	log    *logger.Logger
}

func New(secretKey string, log *logger.Logger) (*Provider, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is not configured")
	}
	return &Provider{
		client: client.New(secretKey, nil),
		log:    log,
	}, nil
}

func issueFromStripe(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return string(stripeErr.Code)
	}
	return ""
}

func (p *Provider) CreateOrder(ctx context.Context, total float64, currency, returnURL string) (*payment.ProviderOrder, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(returnURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(int64(total * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Ticket order"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod: stripe.String("manual"),
		},
	}
	params.Context = ctx

	sess, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		p.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session: %v", err))
		return nil, &models.PaymentOrderError{Issue: issueFromStripe(err), Err: err}
	}

	p.log.LogPayment("CREATE", sess.ID, "stripe checkout session created")
	return &payment.ProviderOrder{
		ID: sess.ID,
		Links: []payment.Link{
			{Href: sess.URL, Rel: "approve"},
		},
	}, nil
}

func (p *Provider) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	getParams.AddExpand("payment_intent")

	sess, err := p.client.CheckoutSessions.Get(orderID, getParams)
	if err != nil {
		return "", &models.OrderCaptureError{Issue: issueFromStripe(err), Err: err}
	}
	if sess.PaymentIntent == nil {
		return "", &models.OrderCaptureError{Err: fmt.Errorf("session %s has no payment intent", orderID)}
	}

	captureParams := &stripe.PaymentIntentCaptureParams{}
	captureParams.Context = ctx

	pi, err := p.client.PaymentIntents.Capture(sess.PaymentIntent.ID, captureParams)
	if err != nil {
		p.log.Error("STRIPE", fmt.Sprintf("Failed to capture payment intent for session %s: %v", orderID, err))
		return "", &models.OrderCaptureError{Issue: issueFromStripe(err), Err: err}
	}

	// Translate to the provider status vocabulary the reconciler keys on.
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		return models.CaptureCompleted, nil
	}
	return string(pi.Status), nil
}
