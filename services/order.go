package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/utils"
)

// LineItemInput is one requested order line. The price is never part of the
// input; it is read from the catalog at creation time and frozen.
type LineItemInput struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

// SplitInput is one requested bill fragment.
type SplitInput struct {
	Amount    decimal.Decimal  `json:"amount"`
	SplitType models.SplitType `json:"split_type"`
}

// OrderService drives the order state machine: authorization, price capture,
// transactional persist, provider link generation, status transitions.
type OrderService struct {
	Store   OrderStore
	Gateway LinkBuilder
	Vault   *Vault
}

func NewOrderService(store OrderStore, gateway LinkBuilder, vault *Vault) *OrderService {
	return &OrderService{Store: store, Gateway: gateway, Vault: vault}
}

// ComputeTotal sums quantity x frozen unit price across the line items.
// Decimal arithmetic throughout; the total never involves a float.
func ComputeTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CreateOrder runs the full creation sequence. The local persist is
// transactional; the provider call is a separate retryable phase, so a link
// failure leaves the order durable and pending rather than rolled back.
func (s *OrderService) CreateOrder(ctx context.Context, principal *models.User, companyID uint, roomNumber string, lines []LineItemInput) (*models.Order, error) {
	if !HasPermission(principal, models.ResourceOrder, models.PermissionCreate) {
		return nil, ErrPermissionDenied
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("order needs at least one line item")
	}

	// Decrypt before any write. An order that can never get a valid
	// payment link must not exist.
	company, secret, err := s.companyCredentials(ctx, companyID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	catalog, err := s.Store.ItemsByIDs(ctx, companyID, itemIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Item, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}

	// Price capture: the current catalog price is read once here and
	// frozen into the line item.
	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return nil, ErrNotFound
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for item %d", line.Quantity, line.ItemID)
		}
		orderItems = append(orderItems, models.OrderItem{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
		})
	}

	order := &models.Order{
		CompanyID:       companyID,
		GuestID:         principal.ID,
		RoomNumber:      roomNumber,
		TotalAmount:     ComputeTotal(orderItems),
		PaymentProvider: company.PaymentGateway.Provider,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		Items:           orderItems,
	}
	if err := s.Store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	url, err := s.Gateway.CheckoutLink(ctx, utils.OrderTxRef(order.ID), order.TotalAmount, principal.Email, secret, order.PaymentProvider)
	if err != nil {
		// The order is the durable record a retry acts on; surface the
		// failure without touching it.
		return order, err
	}
	if err := s.Store.SetPaymentURL(ctx, order.ID, url); err != nil {
		return order, err
	}
	order.PaymentURL = &url
	return order, nil
}

// companyCredentials loads the company row and its decrypted provider
// secret. Every provider call goes through here first.
func (s *OrderService) companyCredentials(ctx context.Context, companyID uint) (*models.User, string, error) {
	company, err := s.Store.User(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if !company.PaymentGateway.Configured() {
		return nil, "", ErrInvalidPaymentConfig
	}
	secret, err := s.Vault.Decrypt(company.PaymentGateway.EncryptedSecret)
	if err != nil {
		return nil, "", err
	}
	return company, secret, nil
}

// ownsOrder scopes order visibility: guests see the orders they placed,
// staff and owners the orders of their company.
func ownsOrder(principal *models.User, order *models.Order) bool {
	if principal.Role == models.RoleGuest {
		return order.GuestID == principal.ID
	}
	return order.CompanyID == principal.TenantID()
}

// RetryPaymentLinkFor is the caller-facing retry. An order outside the
// principal's scope is indistinguishable from a missing one.
func (s *OrderService) RetryPaymentLinkFor(ctx context.Context, principal *models.User, orderID uint) (*models.Order, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ownsOrder(principal, order) {
		return nil, ErrNotFound
	}
	return s.RetryPaymentLink(ctx, orderID)
}

// RetryPaymentLink regenerates the checkout link for an already persisted
// order. It never creates a second order. Unscoped; the background sweep
// calls it directly, request handlers go through RetryPaymentLinkFor.
func (s *OrderService) RetryPaymentLink(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus.Terminal() {
		return nil, ErrTerminalState
	}

	_, secret, err := s.companyCredentials(ctx, order.CompanyID)
	if err != nil {
		return nil, err
	}

	guest, err := s.Store.User(ctx, order.GuestID)
	if err != nil {
		return nil, err
	}

	url, err := s.Gateway.CheckoutLink(ctx, utils.OrderTxRef(order.ID), order.TotalAmount, guest.Email, secret, order.PaymentProvider)
	if err != nil {
		return order, err
	}
	if err := s.Store.SetPaymentURL(ctx, order.ID, url); err != nil {
		return order, err
	}
	order.PaymentURL = &url
	return order, nil
}

// SplitBill appends bill fragments to an order, each with its own payment
// link and independently tracked payment status. Splits are additive; prior
// splits are never replaced. The sum of split amounts is not validated
// against the order total, only logged when it overshoots.
func (s *OrderService) SplitBill(ctx context.Context, principal *models.User, orderID uint, inputs []SplitInput) ([]models.Split, error) {
	if !HasPermission(principal, models.ResourceOrder, models.PermissionCreate) {
		return nil, ErrPermissionDenied
	}

	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus.Terminal() {
		return nil, ErrOrderClosed
	}

	company, secret, err := s.companyCredentials(ctx, order.CompanyID)
	if err != nil {
		return nil, err
	}

	splitSum := decimal.Zero
	for _, existing := range order.Splits {
		splitSum = splitSum.Add(existing.Amount)
	}

	created := make([]models.Split, 0, len(inputs))
	for _, input := range inputs {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return created, fmt.Errorf("split amount must be positive")
		}
		split := models.Split{
			OrderID:       order.ID,
			GuestID:       principal.ID,
			Amount:        input.Amount,
			SplitType:     input.SplitType,
			PaymentStatus: models.PaymentPending,
		}
		if err := s.Store.CreateSplit(ctx, &split); err != nil {
			return created, err
		}

		url, err := s.Gateway.CheckoutLink(ctx, utils.SplitTxRef(split.ID), split.Amount, principal.Email, secret, company.PaymentGateway.Provider)
		if err != nil {
			// Same two-phase rule as orders: the split row stays and
			// its link can be retried.
			return append(created, split), err
		}
		if err := s.Store.SetSplitPaymentURL(ctx, split.ID, url); err != nil {
			return append(created, split), err
		}
		split.PaymentURL = &url

		splitSum = splitSum.Add(split.Amount)
		created = append(created, split)
	}

	if splitSum.GreaterThan(order.TotalAmount) {
		log.Printf("order %d: split total %s exceeds order total %s", order.ID, splitSum, order.TotalAmount)
	}
	return created, nil
}

// SetOrderStatus transitions the fulfilment axis. Terminal states stay put.
func (s *OrderService) SetOrderStatus(ctx context.Context, principal *models.User, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !HasPermission(principal, models.ResourceOrder, models.PermissionUpdate) {
		return nil, ErrPermissionDenied
	}
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus.Terminal() {
		return nil, ErrTerminalState
	}
	if err := s.Store.SetOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.OrderStatus = status
	return order, nil
}

// SetPaymentStatus transitions the payment axis, independent of fulfilment.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) (*models.Order, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus.Terminal() {
		return nil, ErrTerminalState
	}
	if err := s.Store.SetPaymentStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	return order, nil
}

// SetSplitPaymentStatus resolves one bill fragment from a provider callback.
func (s *OrderService) SetSplitPaymentStatus(ctx context.Context, splitID uint, status models.PaymentStatus) error {
	return s.Store.SetSplitPaymentStatus(ctx, splitID, status)
}

// ConfirmOrderPayment resolves an order's payment from the provider's verify
// endpoint. The redirect query string that names the transaction is
// untrusted input; only the provider's answer moves the status, and only a
// settled answer is recorded.
func (s *OrderService) ConfirmOrderPayment(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus.Terminal() {
		return nil, ErrTerminalState
	}

	_, secret, err := s.companyCredentials(ctx, order.CompanyID)
	if err != nil {
		return nil, err
	}
	status, err := s.Gateway.VerifyTransaction(ctx, utils.OrderTxRef(order.ID), secret, order.PaymentProvider)
	if err != nil {
		return nil, err
	}
	if !status.Terminal() {
		// Still in flight at the provider; leave the order pending.
		return order, nil
	}
	return s.SetPaymentStatus(ctx, order.ID, status)
}

// ConfirmSplitPayment is the split counterpart of ConfirmOrderPayment.
func (s *OrderService) ConfirmSplitPayment(ctx context.Context, splitID uint) (*models.Split, error) {
	split, err := s.Store.Split(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if split.PaymentStatus.Terminal() {
		return nil, ErrTerminalState
	}

	order, err := s.Store.Order(ctx, split.OrderID)
	if err != nil {
		return nil, err
	}
	_, secret, err := s.companyCredentials(ctx, order.CompanyID)
	if err != nil {
		return nil, err
	}
	status, err := s.Gateway.VerifyTransaction(ctx, utils.SplitTxRef(split.ID), secret, order.PaymentProvider)
	if err != nil {
		return nil, err
	}
	if !status.Terminal() {
		return split, nil
	}
	if err := s.SetSplitPaymentStatus(ctx, split.ID, status); err != nil {
		return nil, err
	}
	split.PaymentStatus = status
	return split, nil
}
