package models

import "time"

// ROI intervals supported by the catalog.
const (
	IntervalHourly  = "hourly"
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// ROI types: flat pays rate on the initial amount every period, compounded
// folds each period's profit back into the base.
const (
	RoiFlat       = "flat"
	RoiCompounded = "compounded"
)

type Plan struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	MinAmount      float64   `gorm:"type:decimal(15,2);not null" json:"min_amount"`
	MaxAmount      float64   `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	RoiRate        float64   `gorm:"type:decimal(8,4);not null" json:"roi_rate"`
	RoiInterval    string    `gorm:"type:varchar(20);not null;default:'daily'" json:"roi_interval"`
	RoiType        string    `gorm:"type:varchar(20);not null;default:'flat'" json:"roi_type"`
	NumOfPeriods   int       `gorm:"not null" json:"num_of_periods"`
	DurationInDays int       `gorm:"not null" json:"duration_in_days"`
	Status         string    `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// IntervalDuration maps an ROI interval name to its period length.
func IntervalDuration(interval string) time.Duration {
	switch interval {
	case IntervalHourly:
		return time.Hour
	case IntervalWeekly:
		return 7 * 24 * time.Hour
	case IntervalMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// DurationDays derives the plan duration in days from the period count.
// Hourly plans shorter than a day round up to one day.
func DurationDays(interval string, periods int) int {
	d := IntervalDuration(interval) * time.Duration(periods)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
