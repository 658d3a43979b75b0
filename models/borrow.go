// models/borrow.go
package models

import "time"

const ReceiptTable = "lsb_borrow_receipts"
const BorrowItemTable = "lsb_borrow_items"

const (
	BorrowStatusActive   = "active"
	BorrowStatusReturned = "returned"
)

// BorrowReceipt is one checkout transaction. The borrowed items are the
// related BorrowLineItem rows, keyed by (receipt, item) rather than by
// position in a parallel array.
type BorrowReceipt struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	Status string `gorm:"size:20;not null;default:'active';index" json:"status"` // active/returned

	DueAt      time.Time  `gorm:"index;not null" json:"dueAt"`
	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`

	Subject  string `gorm:"size:200" json:"subject,omitempty"`
	Lecturer string `gorm:"size:200" json:"lecturer,omitempty"`
	Notes    string `gorm:"size:500" json:"notes,omitempty"`

	Lines []BorrowLineItem `gorm:"foreignKey:ReceiptID" json:"lines,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BorrowLineItem tracks one (receipt, item) pair. Quantity is fixed at
// checkout; returns only ever grow ReturnedQuantity up to Quantity.
type BorrowLineItem struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID        string     `gorm:"type:uuid;not null;uniqueIndex:lsb_borrow_items_receipt_item" json:"receiptId"`
	ItemID           string     `gorm:"type:uuid;index;not null;uniqueIndex:lsb_borrow_items_receipt_item" json:"itemId"`
	Quantity         int        `gorm:"not null" json:"quantity"`
	ReturnedQuantity int        `gorm:"not null;default:0" json:"returnedQuantity"`
	Status           string     `gorm:"size:20;not null;default:'active'" json:"status"` // active/returned
	ReturnedAt       *time.Time `json:"returnedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (BorrowReceipt) TableName() string  { return ReceiptTable }
func (BorrowLineItem) TableName() string { return BorrowItemTable }
