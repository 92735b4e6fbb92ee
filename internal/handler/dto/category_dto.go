package dto

import (
	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type ListCategoriesRequest struct {
	Search string `form:"search"`
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BookCount int64     `json:"book_count"`
}

func NewCategoryResponse(c *catalog.CategoryWithCount) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		BookCount: c.BookCount,
	}
}
