package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kelechukwu/quick-pickup/models"
)

// OrderStore is the persistence surface the order lifecycle needs. The GORM
// implementation below is the production one; tests substitute an in-memory
// store.
type OrderStore interface {
	// User fetches any principal row; callers use it for both the company
	// (gateway config) and the guest (customer email).
	User(ctx context.Context, userID uint) (*models.User, error)
	ItemsByIDs(ctx context.Context, companyID uint, itemIDs []uint) ([]models.Item, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	Order(ctx context.Context, orderID uint) (*models.Order, error)
	SetPaymentURL(ctx context.Context, orderID uint, url string) error
	SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error
	SetOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error
	CreateSplit(ctx context.Context, split *models.Split) error
	Split(ctx context.Context, splitID uint) (*models.Split, error)
	SetSplitPaymentURL(ctx context.Context, splitID uint, url string) error
	SetSplitPaymentStatus(ctx context.Context, splitID uint, status models.PaymentStatus) error
	PendingWithoutLink(ctx context.Context, limit int) ([]models.Order, error)
}

// StockStore is the persistence surface of the stock ledger. Implementations
// must apply each movement and its item-quantity adjustment atomically;
// concurrent movements against one item must never lose an update.
type StockStore interface {
	ItemForTenant(ctx context.Context, itemID, companyID uint) (*models.Item, error)
	AddMovement(ctx context.Context, movement *models.Stock) error
	RewriteMovement(ctx context.Context, stockID, companyID uint, newQuantity int) (*models.Stock, error)
}

type GormOrderStore struct {
	DB *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormOrderStore) User(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormOrderStore) ItemsByIDs(ctx context.Context, companyID uint, itemIDs []uint) ([]models.Item, error) {
	var items []models.Item
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, itemIDs).
		Find(&items).Error
	return items, err
}

func (s *GormOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	// Order and line items land in one transaction; the external provider
	// call happens after, outside any transaction.
	return s.DB.WithContext(ctx).Create(order).Error
}

func (s *GormOrderStore) Order(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Splits").
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormOrderStore) SetPaymentURL(ctx context.Context, orderID uint, url string) error {
	return s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_url", url).Error
}

func (s *GormOrderStore) SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error {
	return s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status).Error
}

func (s *GormOrderStore) SetOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	return s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("order_status", status).Error
}

func (s *GormOrderStore) CreateSplit(ctx context.Context, split *models.Split) error {
	return s.DB.WithContext(ctx).Create(split).Error
}

func (s *GormOrderStore) Split(ctx context.Context, splitID uint) (*models.Split, error) {
	var split models.Split
	if err := s.DB.WithContext(ctx).First(&split, splitID).Error; err != nil {
		return nil, notFound(err)
	}
	return &split, nil
}

func (s *GormOrderStore) SetSplitPaymentURL(ctx context.Context, splitID uint, url string) error {
	return s.DB.WithContext(ctx).Model(&models.Split{}).
		Where("id = ?", splitID).
		Update("payment_url", url).Error
}

func (s *GormOrderStore) SetSplitPaymentStatus(ctx context.Context, splitID uint, status models.PaymentStatus) error {
	return s.DB.WithContext(ctx).Model(&models.Split{}).
		Where("id = ?", splitID).
		Update("payment_status", status).Error
}

func (s *GormOrderStore) PendingWithoutLink(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Where("payment_status = ? AND payment_url IS NULL", models.PaymentPending).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

type GormStockStore struct {
	DB *gorm.DB
}

func (s *GormStockStore) ItemForTenant(ctx context.Context, itemID, companyID uint) (*models.Item, error) {
	var item models.Item
	err := s.DB.WithContext(ctx).
		Where("id = ? AND company_id = ?", itemID, companyID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// AddMovement appends a ledger row and bumps the item total in one
// transaction. The increment is a single SQL expression against the current
// persisted quantity, so concurrent adds for the same item serialize in the
// database instead of racing through a stale read.
func (s *GormStockStore) AddMovement(ctx context.Context, movement *models.Stock) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).
			Where("id = ?", movement.ItemID).
			Update("quantity", gorm.Expr("quantity + ?", movement.Quantity)).Error
	})
}

// RewriteMovement overwrites a ledger row's quantity and applies the delta
// to the item total. The movement row is locked for the duration so two
// rewrites against movements of the same item cannot interleave their
// read-modify-write and corrupt the running total.
func (s *GormStockStore) RewriteMovement(ctx context.Context, stockID, companyID uint, newQuantity int) (*models.Stock, error) {
	var movement models.Stock
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND company_id = ?", stockID, companyID).
			First(&movement).Error
		if err != nil {
			return notFound(err)
		}

		delta := newQuantity - movement.Quantity
		if err := tx.Model(&models.Item{}).
			Where("id = ?", movement.ItemID).
			Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
			return err
		}

		movement.Quantity = newQuantity
		return tx.Model(&movement).Update("quantity", newQuantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}
