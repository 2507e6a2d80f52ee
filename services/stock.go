package services

import (
	"context"

	"github.com/kelechukwu/quick-pickup/models"
)

// StockService applies signed quantity movements to an item's ledger under
// the same permission gate as the rest of the core. The atomicity of each
// movement lives in the StockStore.
type StockService struct {
	Store StockStore
}

func NewStockService(store StockStore) *StockService {
	return &StockService{Store: store}
}

// AddStock appends a movement and increments the item total by the signed
// delta in one atomic update against the current persisted quantity.
func (s *StockService) AddStock(ctx context.Context, principal *models.User, itemID uint, quantity int, notes string) (*models.Stock, error) {
	if !HasPermission(principal, models.ResourceStock, models.PermissionCreate) {
		return nil, ErrPermissionDenied
	}

	companyID := principal.TenantID()
	if _, err := s.Store.ItemForTenant(ctx, itemID, companyID); err != nil {
		return nil, err
	}

	movement := &models.Stock{
		ItemID:    itemID,
		UserID:    principal.ID,
		CompanyID: companyID,
		Quantity:  quantity,
		Notes:     notes,
	}
	if err := s.Store.AddMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// UpdateStock overwrites one movement's quantity. The delta between the new
// and the existing value is applied to the item total inside the store's
// locked transaction, so rewrites of sibling movements on the same item
// cannot lose each other's adjustments.
func (s *StockService) UpdateStock(ctx context.Context, principal *models.User, stockID uint, newQuantity int) (*models.Stock, error) {
	if !HasPermission(principal, models.ResourceStock, models.PermissionUpdate) {
		return nil, ErrPermissionDenied
	}
	return s.Store.RewriteMovement(ctx, stockID, principal.TenantID(), newQuantity)
}
