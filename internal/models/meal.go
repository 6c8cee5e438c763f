package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB.
// It works on both postgres and sqlite, which keeps the catalog store
// testable without a running database server.
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Meal is a catalog entry the optimizer can select. Nutrition columns are
// per serving.
type Meal struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
	MealName   string           `gorm:"size:255;not null" json:"meal_name"`
	MealType   string           `gorm:"size:50" json:"meal_type"`
	PriceUSD   float64          `gorm:"type:float" json:"price_usd"`
	Calories   float64          `gorm:"type:float" json:"calories"`
	Protein    float64          `gorm:"type:float" json:"protein"`
	Carbs      float64          `gorm:"type:float" json:"carbs"`
	Fat        float64          `gorm:"type:float" json:"fat"`
	Fiber      float64          `gorm:"type:float" json:"fiber"`
	SodiumMg   float64          `gorm:"type:float" json:"sodium_mg"`
	Allergens  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	RecipeID   *uuid.UUID       `gorm:"type:uuid" json:"recipe_id,omitempty"`
	Recipe     *Recipe          `json:"recipe,omitempty"`
}

// BeforeCreate assigns the primary key when the caller left it empty.
func (m *Meal) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Recipe holds preparation metadata shared by one or more meals.
type Recipe struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	RecipeName    string           `gorm:"size:255;not null" json:"recipe_name"`
	PrepTimeMin   int              `json:"prep_time_min"`
	EstimatedCost float64          `gorm:"type:float" json:"estimated_cost"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
