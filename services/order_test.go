package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kelechukwu/quick-pickup/models"
)

// memOrderStore is an in-memory OrderStore for exercising the lifecycle
// without Postgres.
type memOrderStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	items  map[uint]*models.Item
	orders map[uint]*models.Order
	splits map[uint]*models.Split
	nextID uint
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{
		users:  make(map[uint]*models.User),
		items:  make(map[uint]*models.Item),
		orders: make(map[uint]*models.Order),
		splits: make(map[uint]*models.Split),
	}
}

func (s *memOrderStore) User(_ context.Context, userID uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memOrderStore) ItemsByIDs(_ context.Context, companyID uint, itemIDs []uint) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Item
	for _, id := range itemIDs {
		if item, ok := s.items[id]; ok && item.CompanyID == companyID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *memOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &copied
	return nil
}

func (s *memOrderStore) Order(_ context.Context, orderID uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	copied.Splits = nil
	for _, split := range s.splits {
		if split.OrderID == orderID {
			copied.Splits = append(copied.Splits, *split)
		}
	}
	return &copied, nil
}

func (s *memOrderStore) SetPaymentURL(_ context.Context, orderID uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.PaymentURL = &url
	return nil
}

func (s *memOrderStore) SetPaymentStatus(_ context.Context, orderID uint, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (s *memOrderStore) SetOrderStatus(_ context.Context, orderID uint, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.OrderStatus = status
	return nil
}

func (s *memOrderStore) CreateSplit(_ context.Context, split *models.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	split.ID = s.nextID
	copied := *split
	s.splits[split.ID] = &copied
	return nil
}

func (s *memOrderStore) Split(_ context.Context, splitID uint) (*models.Split, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	split, ok := s.splits[splitID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *split
	return &copied, nil
}

func (s *memOrderStore) SetSplitPaymentURL(_ context.Context, splitID uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	split, ok := s.splits[splitID]
	if !ok {
		return ErrNotFound
	}
	split.PaymentURL = &url
	return nil
}

func (s *memOrderStore) SetSplitPaymentStatus(_ context.Context, splitID uint, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	split, ok := s.splits[splitID]
	if !ok {
		return ErrNotFound
	}
	split.PaymentStatus = status
	return nil
}

func (s *memOrderStore) PendingWithoutLink(_ context.Context, limit int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, order := range s.orders {
		if order.PaymentStatus == models.PaymentPending && order.PaymentURL == nil && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, nil
}

type fakeGateway struct {
	url          string
	err          error
	calls        int
	lastAmount   decimal.Decimal
	lastSecret   string
	verifyStatus models.PaymentStatus
	verifyErr    error
	verifyCalls  int
}

func (g *fakeGateway) CheckoutLink(_ context.Context, _ string, amount decimal.Decimal, _ string, secret string, _ models.PaymentProvider) (string, error) {
	g.calls++
	g.lastAmount = amount
	g.lastSecret = secret
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

func (g *fakeGateway) VerifyTransaction(_ context.Context, _, secret string, _ models.PaymentProvider) (models.PaymentStatus, error) {
	g.verifyCalls++
	g.lastSecret = secret
	if g.verifyErr != nil {
		return "", g.verifyErr
	}
	if g.verifyStatus == "" {
		return models.PaymentPending, nil
	}
	return g.verifyStatus, nil
}

const companyID, guestID = 1, 2

func orderFixture(t *testing.T) (*OrderService, *memOrderStore, *fakeGateway, *models.User) {
	t.Helper()

	vault := testVault(t)
	encryptedSecret, err := vault.Encrypt("sk_test_secret")
	if err != nil {
		t.Fatal(err)
	}

	store := newMemOrderStore()
	store.users[companyID] = &models.User{
		ID:    companyID,
		Email: "owner@hotel.test",
		Role:  models.RoleHotelOwner,
		PaymentGateway: models.PaymentGateway{
			Provider:        models.ProviderFlutterwave,
			EncryptedSecret: encryptedSecret,
		},
	}
	guest := &models.User{
		ID:    guestID,
		Email: "guest@example.com",
		Role:  models.RoleGuest,
	}
	ApplyDefaultGrants(guest)
	store.users[guestID] = guest

	store.items[10] = &models.Item{ID: 10, CompanyID: companyID, Name: "Jollof Rice", Price: decimal.RequireFromString("15.00")}
	store.items[11] = &models.Item{ID: 11, CompanyID: companyID, Name: "Chapman", Price: decimal.RequireFromString("7.50")}

	gateway := &fakeGateway{url: "https://pay.example/checkout"}
	return NewOrderService(store, gateway, vault), store, gateway, guest
}

func TestCreateOrderComputesFrozenTotal(t *testing.T) {
	service, store, gateway, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{
		{ItemID: 10, Quantity: 2},
		{ItemID: 11, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("total = %s, want 37.50", order.TotalAmount)
	}
	if order.PaymentStatus != models.PaymentPending || order.OrderStatus != models.OrderPending {
		t.Errorf("statuses = %s/%s, want pending/pending", order.PaymentStatus, order.OrderStatus)
	}
	if order.PaymentURL == nil || *order.PaymentURL != gateway.url {
		t.Error("payment URL not attached")
	}
	if gateway.lastSecret != "sk_test_secret" {
		t.Error("gateway did not receive the decrypted secret")
	}

	// A later catalog price change must not move the persisted total.
	store.items[10].Price = decimal.RequireFromString("99.99")
	persisted, err := store.Order(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !persisted.TotalAmount.Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("total changed to %s after catalog update", persisted.TotalAmount)
	}
	if !persisted.Items[0].UnitPrice.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("frozen unit price changed to %s", persisted.Items[0].UnitPrice)
	}
}

func TestCreateOrderWithoutPermission(t *testing.T) {
	service, store, _, _ := orderFixture(t)

	stranger := &models.User{ID: 9, Role: models.RoleChef}
	if _, err := service.CreateOrder(context.Background(), stranger, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Error("no order may be persisted on a rejected request")
	}
}

func TestCreateOrderWithoutGatewayConfig(t *testing.T) {
	service, store, _, guest := orderFixture(t)
	store.users[companyID].PaymentGateway = models.PaymentGateway{}

	_, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	if !errors.Is(err, ErrInvalidPaymentConfig) {
		t.Fatalf("expected ErrInvalidPaymentConfig, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Error("no order row may exist for an unconfigured tenant")
	}
}

func TestCreateOrderCorruptedSecretAbortsBeforePersist(t *testing.T) {
	service, store, _, guest := orderFixture(t)
	store.users[companyID].PaymentGateway.EncryptedSecret = "garbage-ciphertext"

	_, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	var credentialErr *CredentialError
	if !errors.As(err, &credentialErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Error("decryption failure must abort before any write")
	}
}

func TestCreateOrderLinkFailureLeavesOrderRetryable(t *testing.T) {
	service, store, gateway, guest := orderFixture(t)
	gateway.err = &PaymentLinkError{Provider: "flutterwave", Err: errors.New("timeout")}

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 2}})
	var linkErr *PaymentLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected PaymentLinkError, got %v", err)
	}
	if order == nil {
		t.Fatal("the persisted order must be returned alongside the link failure")
	}

	persisted, err := store.Order(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.PaymentURL != nil {
		t.Error("failed link generation must not attach a URL")
	}
	if persisted.PaymentStatus != models.PaymentPending {
		t.Errorf("payment status = %s, want pending", persisted.PaymentStatus)
	}

	// Retry against the same order id attaches the URL without creating a
	// second order.
	gateway.err = nil
	retried, err := service.RetryPaymentLink(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("RetryPaymentLink: %v", err)
	}
	if retried.ID != order.ID {
		t.Error("retry must act on the existing order")
	}
	if retried.PaymentURL == nil || *retried.PaymentURL != gateway.url {
		t.Error("retry must attach the URL")
	}
	if len(store.orders) != 1 {
		t.Errorf("retry created a duplicate order, %d rows", len(store.orders))
	}
}

// A retry request is scoped like any other order read: another guest, or
// staff of another company, sees ErrNotFound and never reaches the gateway.
func TestRetryPaymentLinkScopedToCaller(t *testing.T) {
	service, _, gateway, guest := orderFixture(t)
	gateway.err = &PaymentLinkError{Provider: "flutterwave", Err: errors.New("timeout")}

	order, _ := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	if order == nil {
		t.Fatal("order must be persisted despite the link failure")
	}
	gateway.err = nil
	callsBefore := gateway.calls

	otherGuest := &models.User{ID: 99, Role: models.RoleGuest}
	ApplyDefaultGrants(otherGuest)
	if _, err := service.RetryPaymentLinkFor(context.Background(), otherGuest, order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign guest: expected ErrNotFound, got %v", err)
	}

	otherCompany := uint(77)
	foreignStaff := &models.User{ID: 98, Role: models.RoleManager, CompanyID: &otherCompany}
	ApplyDefaultGrants(foreignStaff)
	if _, err := service.RetryPaymentLinkFor(context.Background(), foreignStaff, order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign staff: expected ErrNotFound, got %v", err)
	}
	if gateway.calls != callsBefore {
		t.Error("out-of-scope retries must not reach the gateway")
	}

	// The guest who placed the order retries it.
	retried, err := service.RetryPaymentLinkFor(context.Background(), guest, order.ID)
	if err != nil {
		t.Fatalf("RetryPaymentLinkFor: %v", err)
	}
	if retried.PaymentURL == nil || *retried.PaymentURL != gateway.url {
		t.Error("owner-scoped retry must attach the URL")
	}
}

func TestSplitBillAppendsIndependentSplits(t *testing.T) {
	service, store, gateway, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 2}})
	if err != nil {
		t.Fatal(err)
	}

	first, err := service.SplitBill(context.Background(), guest, order.ID, []SplitInput{
		{Amount: decimal.RequireFromString("15.00"), SplitType: models.SplitEven},
	})
	if err != nil {
		t.Fatalf("SplitBill: %v", err)
	}
	if len(first) != 1 || first[0].PaymentURL == nil {
		t.Fatal("split must carry its own payment URL")
	}
	if first[0].PaymentStatus != models.PaymentPending {
		t.Error("split starts pending")
	}

	// Splits are additive: a second call appends, never replaces.
	second, err := service.SplitBill(context.Background(), guest, order.ID, []SplitInput{
		{Amount: decimal.RequireFromString("15.00"), SplitType: models.SplitEven},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 {
		t.Fatal("second call returns only the new split")
	}

	persisted, _ := store.Order(context.Background(), order.ID)
	if len(persisted.Splits) != 2 {
		t.Errorf("order has %d splits, want 2", len(persisted.Splits))
	}
	if gateway.calls != 3 { // order link + two split links
		t.Errorf("gateway called %d times, want 3", gateway.calls)
	}
}

func TestSplitBillRejectedOnClosedOrder(t *testing.T) {
	service, _, _, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	if err != nil {
		t.Fatal(err)
	}
	owner := &models.User{ID: 3, Role: models.RoleHotelOwner}
	ApplyDefaultGrants(owner)
	if _, err := service.SetOrderStatus(context.Background(), owner, order.ID, models.OrderCanceled); err != nil {
		t.Fatal(err)
	}

	_, err = service.SplitBill(context.Background(), guest, order.ID, []SplitInput{
		{Amount: decimal.RequireFromString("5.00"), SplitType: models.SplitCustom},
	})
	if !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("expected ErrOrderClosed, got %v", err)
	}
}

func TestStatusTransitionsAreTerminal(t *testing.T) {
	service, _, _, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := service.SetPaymentStatus(context.Background(), order.ID, models.PaymentSuccess); err != nil {
		t.Fatal(err)
	}
	if _, err := service.SetPaymentStatus(context.Background(), order.ID, models.PaymentFailed); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("payment success must be terminal, got %v", err)
	}

	// Payment and fulfilment are independent axes: a paid order can still
	// be delivered.
	owner := &models.User{ID: 3, Role: models.RoleHotelOwner}
	ApplyDefaultGrants(owner)
	if _, err := service.SetOrderStatus(context.Background(), owner, order.ID, models.OrderDelivered); err != nil {
		t.Fatal(err)
	}
	if _, err := service.SetOrderStatus(context.Background(), owner, order.ID, models.OrderCanceled); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("delivered must be terminal, got %v", err)
	}
}

// The callback's query string never decides a payment. Only the provider's
// verify answer does, and an unsettled answer leaves the order pending.
func TestConfirmOrderPaymentRequiresProviderVerdict(t *testing.T) {
	service, store, gateway, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 1}})
	if err != nil {
		t.Fatal(err)
	}

	// Provider still reports the transaction in flight.
	gateway.verifyStatus = models.PaymentPending
	confirmed, err := service.ConfirmOrderPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("ConfirmOrderPayment: %v", err)
	}
	if confirmed.PaymentStatus != models.PaymentPending {
		t.Errorf("status = %s, want pending while unverified", confirmed.PaymentStatus)
	}
	persisted, _ := store.Order(context.Background(), order.ID)
	if persisted.PaymentStatus != models.PaymentPending {
		t.Error("unverified confirmation must not persist a terminal status")
	}

	gateway.verifyStatus = models.PaymentSuccess
	confirmed, err = service.ConfirmOrderPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.PaymentStatus != models.PaymentSuccess {
		t.Errorf("status = %s, want success", confirmed.PaymentStatus)
	}
	if gateway.verifyCalls != 2 {
		t.Errorf("verify called %d times, want 2", gateway.verifyCalls)
	}

	// Terminal payments are settled once.
	if _, err := service.ConfirmOrderPayment(context.Background(), order.ID); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState on a settled order, got %v", err)
	}
}

func TestConfirmSplitPaymentRequiresProviderVerdict(t *testing.T) {
	service, store, gateway, guest := orderFixture(t)

	order, err := service.CreateOrder(context.Background(), guest, companyID, "204", []LineItemInput{{ItemID: 10, Quantity: 2}})
	if err != nil {
		t.Fatal(err)
	}
	splits, err := service.SplitBill(context.Background(), guest, order.ID, []SplitInput{
		{Amount: decimal.RequireFromString("15.00"), SplitType: models.SplitEven},
	})
	if err != nil {
		t.Fatal(err)
	}

	gateway.verifyStatus = models.PaymentFailed
	confirmed, err := service.ConfirmSplitPayment(context.Background(), splits[0].ID)
	if err != nil {
		t.Fatalf("ConfirmSplitPayment: %v", err)
	}
	if confirmed.PaymentStatus != models.PaymentFailed {
		t.Errorf("split status = %s, want failed", confirmed.PaymentStatus)
	}

	// The parent order's payment axis is untouched by split settlement.
	persisted, _ := store.Order(context.Background(), order.ID)
	if persisted.PaymentStatus != models.PaymentPending {
		t.Errorf("order status = %s, want pending", persisted.PaymentStatus)
	}
}

func TestComputeTotalDecimal(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.20")},
	}
	// 3*0.10 + 0.20 must be exactly 0.50, which float arithmetic misses.
	if total := ComputeTotal(items); !total.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("total = %s, want 0.50", total)
	}
}
