// models/movement.go
package models

import "time"

// Movement types.
const (
	MovementIncome  = "entrada"
	MovementExpense = "saida"
)

// Movement is a single income or expense entry under a category.
type Movement struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MovementRequest is the body of POST /api/movements.
type MovementRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"required,max=100"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=entrada saida"`
	Category    string  `json:"category" validate:"required"`
}

// MovementUpdateRequest is the body of PUT /api/movements/:id. The category
// of an existing movement cannot be changed.
type MovementUpdateRequest struct {
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"omitempty,max=100"`
	Amount      float64 `json:"amount" validate:"omitempty,gt=0"`
	Type        string  `json:"type" validate:"omitempty,oneof=entrada saida"`
}
