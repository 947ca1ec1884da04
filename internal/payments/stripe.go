package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// LineItem is one cart line presented on the hosted payment page.
type LineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutClient is what the checkout handler depends on; tests substitute a
// fake so no network is involved.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, currency string, items []LineItem) (*CheckoutSession, error)
}

type StripeClient struct {
	successURL string
	cancelURL  string
}

func NewStripeClient(secretKey, siteURL string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{
		successURL: siteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  siteURL + "/cart",
	}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, currency string, items []LineItem) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyEvent checks the stripe-signature header against the signing secret
// before the payload is trusted.
func VerifyEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, secret)
}
