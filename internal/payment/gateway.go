package payment

import (
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// Gateway abstracts the card processor so the service and handlers can be
// tested without network calls.
type Gateway interface {
	// CreateIntent opens a payment intent for the given minor-unit amount and
	// returns the intent id and the client secret the storefront confirms
	// with.
	CreateIntent(amount int64, currency, orderCode string) (id, clientSecret string, err error)
}

// StripeGateway is the production Gateway.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(apiKey string) *StripeGateway {
	return &StripeGateway{api: client.New(apiKey, nil)}
}

func (g *StripeGateway) CreateIntent(amount int64, currency, orderCode string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_code", orderCode)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", err
	}
	return intent.ID, intent.ClientSecret, nil
}
