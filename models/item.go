// models/item.go
package models

import "time"

const ItemTable = "lsb_items"
const InventoryTable = "lsb_inventory"

const (
	ItemStatusActive  = "active"
	ItemStatusRetired = "retired"
)

// Item is one catalog entry (a tool model, not a physical unit).
// Quantities live in the Inventory row created alongside it.
type Item struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Serial      string    `gorm:"size:120;uniqueIndex;not null" json:"serial"` // shop catalog number
	Name        string    `gorm:"size:200;not null" json:"name"`
	Category    string    `gorm:"size:120;index" json:"category,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:500" json:"imageUrl,omitempty"`
	Status      string    `gorm:"size:20;not null;default:'active'" json:"status"` // active/retired
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Inventory holds the unit counters for one item.
// total_borrowed + available_quantity == total_quantity after every settled
// checkout/return; all mutations run inside a transaction in db.Repo.
type Inventory struct {
	ItemID            string    `gorm:"type:uuid;primaryKey" json:"itemId"`
	TotalQuantity     int       `gorm:"not null;default:0" json:"totalQuantity"`
	TotalBorrowed     int       `gorm:"not null;default:0" json:"totalBorrowed"`
	AvailableQuantity int       `gorm:"not null;default:0" json:"availableQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Item) TableName() string      { return ItemTable }
func (Inventory) TableName() string { return InventoryTable }
