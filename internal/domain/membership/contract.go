package membership

import (
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/gymflow-backend/internal/domain/people"
)

type ContractStatus string

const (
	ContractActive        ContractStatus = "active"
	ContractFrozen        ContractStatus = "frozen"
	ContractExpired       ContractStatus = "expired"
	ContractCancelled     ContractStatus = "cancelled"
	ContractAboutToExpire ContractStatus = "about_to_expire"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractActive, ContractFrozen, ContractExpired, ContractCancelled, ContractAboutToExpire:
		return true
	default:
		return false
	}
}

// Open statuses are the ones limited to one contract per person.
func (s ContractStatus) Open() bool {
	return s == ContractActive || s == ContractFrozen
}

// Bookable statuses allow the holder to book training sessions.
func (s ContractStatus) Bookable() bool {
	return s == ContractActive || s == ContractAboutToExpire
}

var (
	OpenContractStatuses     = []string{string(ContractActive), string(ContractFrozen)}
	BookableContractStatuses = []string{string(ContractActive), string(ContractAboutToExpire)}
)

type Contract struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Code             string            `gorm:"column:code;size:32;not null;uniqueIndex:ux_contract_code" json:"code"`
	PersonID         uint              `gorm:"column:person_id;not null;index" json:"person_id"`
	Person           *people.Person    `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	MembershipPlanID uint              `gorm:"column:membership_plan_id;not null;index" json:"membership_id"`
	Plan             *MembershipPlan   `gorm:"foreignKey:MembershipPlanID" json:"membership,omitempty"`
	StartDate        datatypes.Date    `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate          datatypes.Date    `gorm:"column:end_date;type:date;not null;index" json:"end_date"`
	SnapshottedPrice float64           `gorm:"column:snapshotted_price;type:decimal(10,2);not null" json:"snapshotted_price"`
	Status           string            `gorm:"column:status;not null;index" json:"status"`
	FrozenAt         *time.Time        `gorm:"column:frozen_at" json:"frozen_at"`
	Reason           string            `gorm:"column:reason" json:"reason,omitempty"`
	CreatedBy        uint              `gorm:"column:created_by;not null" json:"created_by"`
	Creator          *people.User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	UpdatedBy        *uint             `gorm:"column:updated_by" json:"updated_by,omitempty"`
	Updater          *people.User      `gorm:"foreignKey:UpdatedBy" json:"updater,omitempty"`
	History          []ContractHistory `gorm:"foreignKey:ContractID" json:"history,omitempty"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`
}

func (Contract) TableName() string { return "contract" }

func (c Contract) CurrentStatus() ContractStatus { return ContractStatus(c.Status) }

func (c Contract) Start() time.Time { return time.Time(c.StartDate) }
func (c Contract) End() time.Time   { return time.Time(c.EndDate) }

// ContractHistory is append-only: one row per committed status change.
type ContractHistory struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ContractID     uint           `gorm:"column:contract_id;not null;index" json:"contract_id"`
	PreviousStatus *string        `gorm:"column:previous_status" json:"previous_status"`
	NewStatus      string         `gorm:"column:new_status;not null" json:"new_status"`
	ChangedAt      time.Time      `gorm:"column:changed_at;not null;index" json:"changed_at"`
	ChangedBy      uint           `gorm:"column:changed_by;not null" json:"changed_by"`
	Actor          *people.User   `gorm:"foreignKey:ChangedBy" json:"-"`
	ActorName      string         `gorm:"-" json:"changed_by_name,omitempty"`
	Reason         string         `gorm:"column:reason" json:"reason,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (ContractHistory) TableName() string { return "contract_history" }
