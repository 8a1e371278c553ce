package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"solobuddy/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// bookingMetadataKey carries the booking id through the payment provider.
const bookingMetadataKey = "bookingId"

// PaymentGateway opens hosted checkouts and verifies provider webhooks.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
	// ExpireCheckoutSession closes an open checkout so it can no longer be paid.
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
	ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error)
}

// StripeGateway implements PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	newSession    func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	expireSession func(id string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error)
}

// NewStripeGateway sets the global Stripe key and returns a gateway that
// redirects back to frontendURL.
func NewStripeGateway(secretKey, webhookSecret, frontendURL string) *StripeGateway {
	stripe.Key = secretKey
	base := strings.TrimRight(frontendURL, "/")
	return &StripeGateway{
		WebhookSecret: webhookSecret,
		SuccessURL:    base + "/bookings/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/bookings/cancel",
		newSession:    session.New,
		expireSession: session.Expire,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	metadata := map[string]string{bookingMetadataKey: req.BookingID, "travelerId": req.TravelerID}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.SuccessURL),
		CancelURL:         stripe.String(g.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		ExpiresAt:         stripe.Int64(req.ExpiresAt.Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(int64(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		// payment_intent events carry the booking id too
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &models.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := g.expireSession(sessionID, params); err != nil {
		return fmt.Errorf("stripe expire session %s: %w", sessionID, err)
	}
	return nil
}

// ParseWebhook checks the Stripe-Signature header against the raw body before
// decoding anything, then reduces the event to what the booking core consumes.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	out := &models.PaymentEvent{ID: event.ID, RawType: string(event.Type), Type: models.PaymentIgnored}
	switch string(event.Type) {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		// delayed payment methods complete the session before the money arrives
		if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			return out, nil
		}
		out.Type = models.PaymentCompleted
		out.BookingID = checkoutBookingID(&cs)
	case "checkout.session.expired":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Type = models.PaymentSessionExpired
		out.BookingID = checkoutBookingID(&cs)
	case "checkout.session.async_payment_failed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Type = models.PaymentFailed
		out.BookingID = checkoutBookingID(&cs)
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.Type = models.PaymentFailed
		out.BookingID = pi.Metadata[bookingMetadataKey]
	}
	return out, nil
}

func checkoutBookingID(cs *stripe.CheckoutSession) string {
	if id := cs.Metadata[bookingMetadataKey]; id != "" {
		return id
	}
	return cs.ClientReferenceID
}
