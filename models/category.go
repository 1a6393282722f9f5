// models/category.go
package models

import "time"

// Category model. System categories are seeded once and can never be edited
// or deleted through the API; public categories are additionally visible to
// the viewer/guest role.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Slug      string    `json:"slug"`
	IsSystem  bool      `json:"isSystem"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SystemCategories are the six built-in categories seeded on first run.
var SystemCategories = []Category{
	{ID: "cantinas", Name: "Cantinas", Icon: "Coffee", Color: "amber", Slug: "cantinas", IsSystem: true},
	{ID: "missoes", Name: "Missões", Icon: "Heart", Color: "red", Slug: "missoes", IsSystem: true},
	{ID: "melhorias", Name: "Melhorias", Icon: "Wrench", Color: "blue", Slug: "melhorias", IsSystem: true},
	{ID: "jovens", Name: "Jovens", Icon: "Users", Color: "green", Slug: "jovens", IsSystem: true},
	{ID: "eventos", Name: "Eventos Especiais", Icon: "Calendar", Color: "purple", Slug: "eventos", IsSystem: true},
	{ID: "aquisicao", Name: "Aquisição", Icon: "ShoppingCart", Color: "orange", Slug: "aquisicao", IsSystem: true},
}

// CategoryRequest is the body of POST /api/categories.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Icon     string `json:"icon" validate:"required"`
	Color    string `json:"color" validate:"required"`
	IsPublic bool   `json:"isPublic"`
}

// CategoryUpdateRequest is the body of PUT /api/categories/:id. All fields optional.
type CategoryUpdateRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=50"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	IsPublic *bool  `json:"isPublic"`
}
