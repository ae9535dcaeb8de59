package membership

import "time"

type MembershipPlan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	Price        float64   `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	ValidityDays int       `gorm:"column:validity_days;not null" json:"validity_days"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (MembershipPlan) TableName() string { return "membership_plan" }
