// db/repo_borrow.go
package db

import (
	"context"
	"errors"
	"time"

	"toollend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyCheckout     = errors.New("checkout needs at least one line")
	ErrDuplicateItem     = errors.New("duplicate item in checkout")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrNotReceiptOwner   = errors.New("receipt belongs to another user")
	ErrEmptyReturn       = errors.New("return needs at least one line")
	ErrLineNotFound      = errors.New("no borrowed line for this item")
	ErrQuantityExceeded  = errors.New("return quantity exceeds outstanding amount")
	ErrInventoryNotFound = errors.New("inventory record not found")
	ErrInventoryState    = errors.New("inventory counters would go out of range")
	ErrInvalidCondition  = errors.New("unknown return condition")
)

type CheckoutLine struct {
	ItemID   string
	Quantity int
}

type CheckoutInput struct {
	UserID   string
	Lines    []CheckoutLine
	DueAt    *time.Time // defaults to 7 days out
	Subject  string
	Lecturer string
	Notes    string
}

// Checkout converts a cart into a persisted receipt while reserving stock.
// Everything runs in one transaction: either the receipt, all its lines and
// all inventory decrements land, or none of them do.
func (r *Repo) Checkout(ctx context.Context, in CheckoutInput) (*models.BorrowReceipt, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyCheckout
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if seen[l.ItemID] {
			return nil, ErrDuplicateItem
		}
		seen[l.ItemID] = true
	}

	now := time.Now().UTC()
	due := now.Add(7 * 24 * time.Hour)
	if in.DueAt != nil {
		due = in.DueAt.UTC()
	}

	var receipt *models.BorrowReceipt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rc := &models.BorrowReceipt{
			ID:       uuid.NewString(),
			UserID:   in.UserID,
			Status:   models.BorrowStatusActive,
			DueAt:    due,
			Subject:  in.Subject,
			Lecturer: in.Lecturer,
			Notes:    in.Notes,
		}
		if err := tx.Create(rc).Error; err != nil {
			return err
		}

		for _, l := range in.Lines {
			// 1) 锁住该物品
			var it models.Item
			if err := forUpdate(tx).First(&it, "id = ?", l.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			if it.Status != models.ItemStatusActive {
				return ErrItemRetired
			}
			var inv models.Inventory
			if err := forUpdate(tx).First(&inv, "item_id = ?", l.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInventoryNotFound
				}
				return err
			}
			if l.Quantity > inv.AvailableQuantity {
				return ErrInsufficientStock
			}

			// 2) 占用库存（条件更新，防止并发超借）
			res := tx.Model(&models.Inventory{}).
				Where("item_id = ? AND available_quantity >= ?", l.ItemID, l.Quantity).
				Updates(map[string]any{
					"total_borrowed":     gorm.Expr("total_borrowed + ?", l.Quantity),
					"available_quantity": gorm.Expr("available_quantity - ?", l.Quantity),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}

			// 3) 新建明细行
			li := models.BorrowLineItem{
				ID:        uuid.NewString(),
				ReceiptID: rc.ID,
				ItemID:    l.ItemID,
				Quantity:  l.Quantity,
				Status:    models.BorrowStatusActive,
			}
			if err := tx.Create(&li).Error; err != nil {
				return err
			}
			rc.Lines = append(rc.Lines, li)
		}

		receipt = rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

type ReturnLine struct {
	ItemID    string
	Quantity  int
	Condition string
	Notes     string
}

func validCondition(c string) bool {
	switch c {
	case models.ConditionGood, models.ConditionDamaged, models.ConditionLost, models.ConditionMissing:
		return true
	}
	return false
}

// ReturnItems processes one or more return lines against a single receipt:
// per line it grows the line's returned quantity, appends a condition log row
// and releases the units back to inventory; afterwards it recomputes receipt
// completion from the stored lines. The caller's identity is an explicit
// parameter and must match the receipt owner.
//
// The whole batch is one transaction, so a failure on any line (missing line,
// over-return, counter out of range) rolls back every earlier line's effects.
func (r *Repo) ReturnItems(ctx context.Context, userID, receiptID string, lines []ReturnLine) (*models.BorrowReceipt, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyReturn
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if !validCondition(l.Condition) {
			return nil, ErrInvalidCondition
		}
	}

	var receipt *models.BorrowReceipt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rc models.BorrowReceipt
		if err := forUpdate(tx).First(&rc, "id = ?", receiptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReceiptNotFound
			}
			return err
		}
		if rc.UserID != userID {
			return ErrNotReceiptOwner
		}

		now := time.Now().UTC()
		for _, l := range lines {
			var li models.BorrowLineItem
			if err := forUpdate(tx).
				First(&li, "receipt_id = ? AND item_id = ?", receiptID, l.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrLineNotFound
				}
				return err
			}
			newReturned := li.ReturnedQuantity + l.Quantity
			if newReturned > li.Quantity {
				return ErrQuantityExceeded
			}

			var inv models.Inventory
			if err := forUpdate(tx).First(&inv, "item_id = ?", l.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInventoryNotFound
				}
				return err
			}
			newBorrowed := inv.TotalBorrowed - l.Quantity
			newAvailable := inv.AvailableQuantity + l.Quantity
			if newBorrowed < 0 || newAvailable > inv.TotalQuantity {
				return ErrInventoryState
			}

			update := map[string]any{
				"returned_quantity": newReturned,
				"updated_at":        now,
			}
			if newReturned == li.Quantity {
				update["status"] = models.BorrowStatusReturned
				update["returned_at"] = now
			}
			if err := tx.Model(&models.BorrowLineItem{}).
				Where("id = ?", li.ID).
				Updates(update).Error; err != nil {
				return err
			}

			cond := models.ReturnCondition{
				ID:        uuid.NewString(),
				ReceiptID: receiptID,
				ItemID:    l.ItemID,
				UserID:    userID,
				Condition: l.Condition,
				Quantity:  l.Quantity,
				Notes:     l.Notes,
			}
			if err := tx.Create(&cond).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Inventory{}).
				Where("item_id = ?", l.ItemID).
				Updates(map[string]any{
					"total_borrowed":     newBorrowed,
					"available_quantity": newAvailable,
					"updated_at":         now,
				}).Error; err != nil {
				return err
			}
		}

		// 收据完成度以库里的明细为准，不是以本次请求为准
		var open int64
		if err := tx.Model(&models.BorrowLineItem{}).
			Where("receipt_id = ? AND returned_quantity < quantity", receiptID).
			Count(&open).Error; err != nil {
			return err
		}
		if open == 0 {
			if err := tx.Model(&models.BorrowReceipt{}).
				Where("id = ?", receiptID).
				Updates(map[string]any{
					"status":      models.BorrowStatusReturned,
					"returned_at": now,
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Preload("Lines").First(&rc, "id = ?", receiptID).Error; err != nil {
			return err
		}
		receipt = &rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// GetReceipt loads one receipt with its lines. Non-admin callers only see
// their own receipts.
func (r *Repo) GetReceipt(ctx context.Context, userID string, isAdmin bool, id string) (*models.BorrowReceipt, error) {
	var rc models.BorrowReceipt
	if err := r.DB.WithContext(ctx).Preload("Lines").First(&rc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	if !isAdmin && rc.UserID != userID {
		return nil, ErrNotReceiptOwner
	}
	return &rc, nil
}

func (r *Repo) ListReceipts(ctx context.Context, userID, status string) ([]models.BorrowReceipt, error) {
	q := r.DB.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if status == models.BorrowStatusActive || status == models.BorrowStatusReturned {
		q = q.Where("status = ?", status)
	}
	var rcs []models.BorrowReceipt
	if err := q.Find(&rcs).Error; err != nil {
		return nil, err
	}
	return rcs, nil
}

// AdminBorrowRow is the admin list view: receipt plus borrower info.
type AdminBorrowRow struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Status      string     `json:"status"`
	DueAt       time.Time  `json:"dueAt"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Lecturer    string     `json:"lecturer,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Overdue     bool       `json:"overdue"`
}

type AdminBorrowsQuery struct {
	Status  string // "", "active", "returned"
	Overdue bool
	Page    int
	Size    int
}

type PagedAdminBorrows struct {
	Total int64            `json:"total"`
	Items []AdminBorrowRow `json:"items"`
}

func (r *Repo) ListReceiptsAdmin(ctx context.Context, q AdminBorrowsQuery) (*PagedAdminBorrows, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	now := time.Now().UTC()

	qry := r.DB.WithContext(ctx).
		Table(models.ReceiptTable+" b").
		Select(`b.id, b.user_id, u.username, u.display_name, b.status, b.due_at,
			b.returned_at, b.subject, b.lecturer, b.created_at,
			(b.status = 'active' AND b.due_at < ?) AS overdue`, now).
		Joins("LEFT JOIN lsb_users u ON u.id = b.user_id")

	if q.Status == models.BorrowStatusActive || q.Status == models.BorrowStatusReturned {
		qry = qry.Where("b.status = ?", q.Status)
	}
	if q.Overdue {
		qry = qry.Where("b.status = 'active' AND b.due_at < ?", now)
	}

	var total int64
	if err := qry.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []AdminBorrowRow
	if err := qry.
		Order("b.created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedAdminBorrows{Total: total, Items: rows}, nil
}
