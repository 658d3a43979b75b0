package models

import "time"

const ReturnConditionTable = "lsb_return_conditions"

const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged_or_broken"
	ConditionLost    = "lost"
	ConditionMissing = "missing"
)

// ReturnCondition is an append-only audit row: one per return line processed
// per return event, never updated or deleted.
type ReturnCondition struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID string    `gorm:"type:uuid;index;not null" json:"receiptId"`
	ItemID    string    `gorm:"type:uuid;index;not null" json:"itemId"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	Condition string    `gorm:"size:30;not null" json:"condition"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ReturnCondition) TableName() string { return ReturnConditionTable }
