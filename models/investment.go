package models

import "time"

// Investment statuses.
const (
	InvestmentActive    = "Active"
	InvestmentCompleted = "Completed"
)

// Investment binds a user's committed amount to a snapshot of a plan's ROI
// terms. The snapshot fields are copied at creation time so later plan edits
// never change a running investment.
type Investment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	PlanID          uint       `gorm:"not null;index" json:"plan_id"`
	Amount          float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	InitialAmount   float64    `gorm:"type:decimal(15,2);not null" json:"initial_amount"`
	RoiRate         float64    `gorm:"type:decimal(8,4);not null" json:"roi_rate"`
	RoiInterval     string     `gorm:"type:varchar(20);not null" json:"roi_interval"`
	RoiType         string     `gorm:"type:varchar(20);not null" json:"roi_type"`
	StartDate       time.Time  `gorm:"not null" json:"start_date"`
	EndDate         time.Time  `gorm:"not null;index" json:"end_date"`
	LastCredited    *time.Time `json:"last_credited,omitempty"`
	PeriodsCredited int        `gorm:"not null;default:0" json:"periods_credited"`
	Reference       string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	Status          string     `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

// PeriodDuration returns the length of one ROI period for this investment.
func (i *Investment) PeriodDuration() time.Duration {
	return IntervalDuration(i.RoiInterval)
}

// TotalPeriods returns how many ROI periods fit between start and end date.
func (i *Investment) TotalPeriods() int {
	period := i.PeriodDuration()
	if period <= 0 {
		return 0
	}
	return int(i.EndDate.Sub(i.StartDate) / period)
}

// ElapsedPeriods returns how many whole ROI periods have passed at now,
// clamped to the investment's total. Periods up to PeriodsCredited have
// already been paid; the difference is what a sweep owes.
func (i *Investment) ElapsedPeriods(now time.Time) int {
	if now.Before(i.StartDate) {
		return 0
	}
	period := i.PeriodDuration()
	if period <= 0 {
		return 0
	}
	n := int(now.Sub(i.StartDate) / period)
	if total := i.TotalPeriods(); n > total {
		n = total
	}
	return n
}
