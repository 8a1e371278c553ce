package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solobuddy/config"
	memoryRepo "solobuddy/database/repository/memory"
	"solobuddy/handlers"
	"solobuddy/models"
	"solobuddy/routes"
	"solobuddy/services/booking"
	"solobuddy/services/guide"
	"solobuddy/services/review"
	"solobuddy/services/tour"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_test_secret"

// checkoutStub opens fake checkouts but verifies webhooks with the real
// Stripe gateway.
type checkoutStub struct {
	*booking.StripeGateway
}

func (checkoutStub) CreateCheckoutSession(_ context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	return &models.CheckoutSession{ID: "cs_" + req.BookingID, URL: "https://checkout.test/" + req.BookingID}, nil
}

func (checkoutStub) ExpireCheckoutSession(context.Context, string) error { return nil }

type noTasks struct{}

func (noTasks) ScheduleBookingExpiry(context.Context, string, time.Time) error { return nil }
func (noTasks) EnqueueGuideNotification(context.Context, string) error         { return nil }

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "test-secret"

	store := memoryRepo.NewStore()
	sched := models.Schedule{}
	sched.SetExplicitDates([]models.Date{"2030-10-01", "2030-10-02", "2030-10-03"})
	store.PutGuide(models.TourGuide{ID: "g1", UserID: "u-guide", Name: "Linh", Email: "linh@example.com", DailyRate: 50, Schedule: sched})
	store.PutTour(models.Tour{ID: "t1", GuideID: "g1", Title: "Old Quarter walk", Price: 20})

	logger := zap.NewNop()
	gateway := checkoutStub{booking.NewStripeGateway("sk_test_unused", webhookSecret, "http://localhost:3000")}
	bookingSvc := booking.NewBookingService(store.Scheduler(), store.Guides(), store.Tours(), gateway, noTasks{}, booking.Options{
		Currency: "vnd", SessionTTL: 45 * time.Minute, ReaperGrace: 10 * time.Minute,
	}, logger)
	guideSvc := guide.NewGuideService(store.Guides(), store.Scheduler(), nil, "vnd", logger)
	tourSvc := tour.NewTourService(store.Tours(), "vnd", logger)
	reviewSvc := review.NewReviewService(store.Reviews(), store.Scheduler(), store.Guides(), logger)

	bh := handlers.NewBookingHandler(bookingSvc, logger)
	gh := handlers.NewGuideHandler(guideSvc)
	th := handlers.NewTourHandler(tourSvc)
	rh := handlers.NewReviewHandler(reviewSvc)
	hb := &handlers.HandlerBundle{
		GuideIdentity:       guideSvc,
		CreateBooking:       bh.CreateBooking,
		ListBookings:        bh.ListBookings,
		GetBooking:          bh.GetBooking,
		UpdateBookingStatus: bh.UpdateStatus,
		StripeWebhook:       bh.StripeWebhook,
		UpdateAvailability:  gh.UpdateAvailability,
		SetWorkDays:         gh.SetWorkDays,
		UpdateGuideProfile:  gh.UpdateProfile,
		GetGuide:            gh.GetGuide,
		SearchGuides:        gh.Search,
		CreateTour:          th.Create,
		UpdateTour:          th.Update,
		DeleteTour:          th.Delete,
		GetTour:             th.Get,
		ListGuideTours:      th.ListByGuide,
		CreateReview:        rh.Create,
		ListGuideReviews:    rh.ListByGuide,
		AIAnswer:            func(c *gin.Context) { c.Status(http.StatusNotImplemented) },
	}

	r := gin.New()
	routes.RegisterRoutes(r, hb)
	return &api{t: t, router: r}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(userID, role, "Test", userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func (a *api) do(method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) webhook(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func signed(t *testing.T, payload []byte) string {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})
	return sp.Header
}

func completedEvent(bookingID string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_test_1",
  "object": "event",
  "api_version": "2023-10-16",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_%[1]s",
    "object": "checkout.session",
    "payment_status": "paid",
    "client_reference_id": "%[1]s",
    "metadata": {"bookingId": "%[1]s"}
  }}
}`, bookingID))
}

type created struct {
	Booking struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		TotalPrice string `json:"totalPrice"`
	} `json:"booking"`
	CheckoutURL string `json:"checkoutUrl"`
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	traveler := token(t, "u1", models.RoleTraveler)
	guideTok := token(t, "u-guide", models.RoleGuide)

	w := a.do(http.MethodPost, "/v1/bookings", traveler, models.BookingRequest{
		TourGuideID: "g1", TourID: "t1", FromDate: "2030-10-01", ToDate: "2030-10-02", Quantity: 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	var c created
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Booking.TotalPrice != "140" || c.CheckoutURL == "" || c.Booking.Status != string(models.StatusPendingPayment) {
		t.Fatalf("created = %+v", c)
	}
	id := c.Booking.ID

	// the guide sees the booking through the shared endpoints
	w = a.do(http.MethodGet, "/v1/bookings", guideTok, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(id)) || !bytes.Contains(w.Body.Bytes(), []byte(`"totalResults":1`)) {
		t.Fatalf("guide list: %d %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodGet, "/v1/bookings/"+id, guideTok, nil); w.Code != http.StatusOK {
		t.Fatalf("guide get: %d %s", w.Code, w.Body)
	}
	w = a.do(http.MethodGet, "/v1/bookings", token(t, "u2", models.RoleTraveler), nil)
	if w.Code != http.StatusOK || bytes.Contains(w.Body.Bytes(), []byte(id)) {
		t.Fatalf("stranger list: %d %s", w.Code, w.Body)
	}

	// unpaid bookings cannot be reviewed
	w = a.do(http.MethodPost, "/v1/reviews", traveler, models.ReviewInput{BookingID: id, Rating: 5})
	if w.Code != http.StatusBadRequest || !bytes.Contains(w.Body.Bytes(), []byte(utils.KindInvalidState)) {
		t.Fatalf("review unpaid: %d %s", w.Code, w.Body)
	}

	// a second traveler cannot take the same days
	w = a.do(http.MethodPost, "/v1/bookings", token(t, "u2", models.RoleTraveler), models.BookingRequest{
		TourGuideID: "g1", TourID: "t1", FromDate: "2030-10-02", ToDate: "2030-10-03", Quantity: 1,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap: %d %s", w.Code, w.Body)
	}

	payload := completedEvent(id)
	tampered := bytes.Replace(payload, []byte("paid"), []byte("PAID"), 1)
	if w := a.webhook(tampered, signed(t, payload)); w.Code != http.StatusBadRequest {
		t.Fatalf("tampered webhook: %d %s", w.Code, w.Body)
	}
	for i := 0; i < 2; i++ {
		if w := a.webhook(payload, signed(t, payload)); w.Code != http.StatusOK {
			t.Fatalf("webhook %d: %d %s", i, w.Code, w.Body)
		}
	}

	w = a.do(http.MethodGet, "/v1/bookings/"+id, traveler, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"status":"confirmed"`)) {
		t.Fatalf("get: %d %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodGet, "/v1/bookings/"+id, token(t, "u2", models.RoleTraveler), nil); w.Code != http.StatusNotFound {
		t.Fatalf("stranger get: %d", w.Code)
	}

	// the guide cannot drop a booked day
	w = a.do(http.MethodPatch, "/v1/tour-guides/availability", guideTok, map[string][]string{"removeDates": {"2030-10-02"}})
	if w.Code != http.StatusConflict || !bytes.Contains(w.Body.Bytes(), []byte("2030-10-02")) {
		t.Fatalf("remove booked day: %d %s", w.Code, w.Body)
	}

	if w := a.do(http.MethodPatch, "/v1/bookings/"+id+"/status", traveler, gin.H{"status": "completed"}); w.Code != http.StatusForbidden {
		t.Fatalf("traveler status change: %d", w.Code)
	}
	if w := a.do(http.MethodPatch, "/v1/bookings/"+id+"/status", guideTok, gin.H{"status": "completed"}); w.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodPatch, "/v1/bookings/"+id+"/status", guideTok, gin.H{"status": "cancelled"}); w.Code != http.StatusBadRequest {
		t.Fatalf("cancel completed: %d %s", w.Code, w.Body)
	}

	w = a.do(http.MethodPost, "/v1/reviews", traveler, models.ReviewInput{BookingID: id, Rating: 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("review: %d %s", w.Code, w.Body)
	}
	w = a.do(http.MethodGet, "/v1/tour-guides/g1", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"ratingCount":1`)) {
		t.Fatalf("guide detail: %d %s", w.Code, w.Body)
	}
}

func TestWebhookForDeletedBookingIsAcknowledged(t *testing.T) {
	a := newAPI(t)
	payload := completedEvent("gone")
	if w := a.webhook(payload, signed(t, payload)); w.Code != http.StatusOK {
		t.Fatalf("webhook: %d %s", w.Code, w.Body)
	}
	if w := a.webhook(payload, "t=1,v1=deadbeef"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: %d", w.Code)
	}
}

func TestOversizedWebhookIsRejected(t *testing.T) {
	a := newAPI(t)
	payload := append(completedEvent("b1"), bytes.Repeat([]byte(" "), 70000)...)
	w := a.webhook(payload, signed(t, payload))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
}

func TestTourRoutesRequireGuide(t *testing.T) {
	a := newAPI(t)
	body := gin.H{"title": "Night market", "price": 15}

	if w := a.do(http.MethodPost, "/v1/tours", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}
	if w := a.do(http.MethodPost, "/v1/tours", token(t, "u1", models.RoleTraveler), body); w.Code != http.StatusForbidden {
		t.Fatalf("traveler: %d", w.Code)
	}
	w := a.do(http.MethodPost, "/v1/tours", token(t, "u-guide", models.RoleGuide), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("guide: %d %s", w.Code, w.Body)
	}
	w = a.do(http.MethodGet, "/v1/tour-guides/g1/tours", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("Night market")) {
		t.Fatalf("list: %d %s", w.Code, w.Body)
	}
}

func TestValidationErrorShape(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/v1/bookings", token(t, "u1", models.RoleTraveler), models.BookingRequest{
		TourGuideID: "g1", TourID: "t1", FromDate: "2030-10-01", ToDate: "2030-10-05", Quantity: 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	var resp utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != string(utils.KindValidation) || len(resp.Details) != 2 {
		t.Fatalf("response = %+v", resp)
	}
}
