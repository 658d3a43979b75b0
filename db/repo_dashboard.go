// db/repo_dashboard.go
package db

import (
	"context"
	"time"

	"toollend/models"
)

// DashboardStats feeds the admin landing page.
type DashboardStats struct {
	TotalItems      int64 `json:"totalItems"`
	TotalUnits      int64 `json:"totalUnits"`
	UnitsOut        int64 `json:"unitsOut"`
	ActiveReceipts  int64 `json:"activeReceipts"`
	OverdueReceipts int64 `json:"overdueReceipts"`
	TotalUsers      int64 `json:"totalUsers"`
}

func (r *Repo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Item{}).
		Where("status = ?", models.ItemStatusActive).
		Count(&s.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Inventory{}).
		Select("COALESCE(SUM(total_quantity), 0)").
		Scan(&s.TotalUnits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Inventory{}).
		Select("COALESCE(SUM(total_borrowed), 0)").
		Scan(&s.UnitsOut).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BorrowReceipt{}).
		Where("status = ?", models.BorrowStatusActive).
		Count(&s.ActiveReceipts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BorrowReceipt{}).
		Where("status = ? AND due_at < ?", models.BorrowStatusActive, time.Now().UTC()).
		Count(&s.OverdueReceipts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
