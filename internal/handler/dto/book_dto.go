package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
)

type ListBooksRequest struct {
	CategoryID *uuid.UUID `form:"category_id"`
	Search     string     `form:"search"`
	Limit      int        `form:"limit,default=100" binding:"gt=0,lte=500"`
	Page       int        `form:"page,default=1" binding:"gt=0"`
}

// BookForm binds the multipart fields of create/update; the cover file is
// pulled off the form separately by the handler.
type BookForm struct {
	Title       string     `form:"title" binding:"required"`
	Author      string     `form:"author" binding:"required"`
	Publisher   *string    `form:"publisher"`
	Year        *int32     `form:"year" binding:"omitempty,gte=0"`
	CategoryID  *uuid.UUID `form:"category_id"`
	ISBN        *string    `form:"isbn"`
	Description *string    `form:"description"`
}

type BookResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Publisher   *string    `json:"publisher,omitempty"`
	Year        *int32     `json:"year,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewBookResponse(b *catalog.BookWithCategory) *BookResponse {
	resp := &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Publisher.Valid {
		resp.Publisher = &b.Publisher.String
	}
	if b.Year.Valid {
		resp.Year = &b.Year.Int32
	}
	if b.CategoryID.Valid {
		resp.CategoryID = &b.CategoryID.UUID
	}
	if b.CategoryName.Valid {
		resp.Category = &b.CategoryName.String
	}
	if b.ISBN.Valid {
		resp.ISBN = &b.ISBN.String
	}
	if b.Description.Valid {
		resp.Description = &b.Description.String
	}
	if b.Cover.Valid {
		resp.Image = &b.Cover.String
	}
	return resp
}
