package db

import (
	"context"

	"toollend/models"
)

// ListReturnConditions reads the condition log for one receipt in event
// order. Ownership is checked against the receipt like GetReceipt.
func (r *Repo) ListReturnConditions(ctx context.Context, userID string, isAdmin bool, receiptID string) ([]models.ReturnCondition, error) {
	if _, err := r.GetReceipt(ctx, userID, isAdmin, receiptID); err != nil {
		return nil, err
	}
	var conds []models.ReturnCondition
	if err := r.DB.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC").
		Find(&conds).Error; err != nil {
		return nil, err
	}
	return conds, nil
}
