package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyRecord captures one farm-day of production and sales for a single user.
type DailyRecord struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	UserID        string          `gorm:"size:64;not null;uniqueIndex:idx_record_user_date,priority:1" json:"userId"`
	Date          time.Time       `gorm:"not null;uniqueIndex:idx_record_user_date,priority:2;index" json:"date"`
	EggsProduced  int64           `gorm:"not null" json:"eggsProduced"`
	EggsSold      int64           `gorm:"not null" json:"eggsSold"`
	UnitSalePrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unitSalePrice"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"totalRevenue"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	Expenses      []ExpenseLine   `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"expenses"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *DailyRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TotalExpense sums the amounts of the loaded expense lines.
func (r DailyRecord) TotalExpense() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Expenses {
		total = total.Add(line.Amount)
	}
	return total
}

// ExpenseLine is one categorized expense owned by a DailyRecord.
type ExpenseLine struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	RecordID    string           `gorm:"size:36;not null;index" json:"recordId"`
	CategoryID  string           `gorm:"size:36;not null;index" json:"categoryId"`
	Category    *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Description string           `gorm:"not null" json:"description"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (e *ExpenseLine) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ExpenseCategory classifies expense lines. Categories are managed by administrators.
type ExpenseCategory struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *ExpenseCategory) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// FarmSettings holds the per-user farm profile.
type FarmSettings struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex" json:"userId"`
	FarmName  string    `gorm:"size:120;not null" json:"farmName"`
	HenCount  int       `gorm:"not null" json:"henCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (s *FarmSettings) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
