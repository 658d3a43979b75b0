// db/repo_item.go
package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"toollend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrItemRetired       = errors.New("item is retired")
	ErrUnitsStillOut     = errors.New("item has borrowed units outstanding")
	ErrShrinkBelowIssued = errors.New("cannot shrink total below borrowed units")
)

type CreateItemInput struct {
	Serial      string
	Name        string
	Category    string
	Description string
	ImageURL    string
	Quantity    int // initial stock, all available
}

// CreateItem creates the catalog entry and its inventory row together.
func (r *Repo) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	it := &models.Item{
		ID:          uuid.NewString(),
		Serial:      in.Serial,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Status:      models.ItemStatusActive,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(it).Error; err != nil {
			return err
		}
		inv := &models.Inventory{
			ItemID:            it.ID,
			TotalQuantity:     in.Quantity,
			AvailableQuantity: in.Quantity,
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

type UpdateItemInput struct {
	Name        *string
	Category    *string
	Description *string
	ImageURL    *string
}

func (r *Repo) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (*models.Item, error) {
	update := map[string]any{}
	if in.Name != nil {
		update["name"] = *in.Name
	}
	if in.Category != nil {
		update["category"] = *in.Category
	}
	if in.Description != nil {
		update["description"] = *in.Description
	}
	if in.ImageURL != nil {
		update["image_url"] = *in.ImageURL
	}
	if len(update) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(update)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrItemNotFound
		}
	}
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// RetireItem soft-deletes a catalog entry. Refused while units are still out,
// otherwise returned tools would have nowhere to go back to.
func (r *Repo) RetireItem(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Inventory
		if err := forUpdate(tx).First(&inv, "item_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if inv.TotalBorrowed > 0 {
			return ErrUnitsStillOut
		}
		res := tx.Model(&models.Item{}).
			Where("id = ?", id).
			Update("status", models.ItemStatusRetired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}

// SetItemQuantity grows or shrinks total stock. Shrinking is bounded by the
// units currently on the shelf; borrowed units always stay accounted for.
func (r *Repo) SetItemQuantity(ctx context.Context, id string, total int) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&inv, "item_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if total < inv.TotalBorrowed {
			return ErrShrinkBelowIssued
		}
		inv.TotalQuantity = total
		inv.AvailableQuantity = total - inv.TotalBorrowed
		return tx.Model(&models.Inventory{}).
			Where("item_id = ?", id).
			Updates(map[string]any{
				"total_quantity":     inv.TotalQuantity,
				"available_quantity": inv.AvailableQuantity,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ItemRow is the catalog view: item plus its counters in one row.
type ItemRow struct {
	ID          string    `json:"id"`
	Serial      string    `json:"serial"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	TotalQuantity     int `json:"totalQuantity"`
	TotalBorrowed     int `json:"totalBorrowed"`
	AvailableQuantity int `json:"availableQuantity"`
}

type ItemsQuery struct {
	Q        string // 模糊搜索：serial/name
	Category string
	Status   string // "", "active", "retired"
	Page     int
	Size     int
}

type PagedItems struct {
	Total int64     `json:"total"`
	Items []ItemRow `json:"items"`
}

func (r *Repo) ListItems(ctx context.Context, q ItemsQuery) (*PagedItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	qry := r.DB.WithContext(ctx).
		Table(models.ItemTable+" i").
		Select(`i.id, i.serial, i.name, i.category, i.description, i.image_url,
			i.status, i.created_at, i.updated_at,
			v.total_quantity, v.total_borrowed, v.available_quantity`).
		Joins("JOIN " + models.InventoryTable + " v ON v.item_id = i.id")

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(i.serial) LIKE ? OR LOWER(i.name) LIKE ?", pat, pat)
	}
	if q.Category != "" {
		qry = qry.Where("i.category = ?", q.Category)
	}
	if q.Status != "" {
		qry = qry.Where("i.status = ?", q.Status)
	}

	var total int64
	if err := qry.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []ItemRow
	if err := qry.
		Order("i.created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedItems{Total: total, Items: rows}, nil
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*ItemRow, error) {
	var row ItemRow
	res := r.DB.WithContext(ctx).
		Table(models.ItemTable+" i").
		Select(`i.id, i.serial, i.name, i.category, i.description, i.image_url,
			i.status, i.created_at, i.updated_at,
			v.total_quantity, v.total_borrowed, v.available_quantity`).
		Joins("JOIN "+models.InventoryTable+" v ON v.item_id = i.id").
		Where("i.id = ?", id).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return &row, nil
}

func (r *Repo) FindInventory(ctx context.Context, itemID string) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.DB.WithContext(ctx).First(&inv, "item_id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}
