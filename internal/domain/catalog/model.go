package catalog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type CategoryWithCount struct {
	Category
	BookCount int64 `db:"book_count"`
}

type Book struct {
	ID          uuid.UUID      `db:"id"`
	Title       string         `db:"title"`
	Author      string         `db:"author"`
	Publisher   sql.NullString `db:"publisher"`
	Year        sql.NullInt32  `db:"year"`
	CategoryID  uuid.NullUUID  `db:"category_id"`
	ISBN        sql.NullString `db:"isbn"`
	Description sql.NullString `db:"description"`
	Cover       sql.NullString `db:"cover"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type BookWithCategory struct {
	Book
	CategoryName sql.NullString `db:"category_name"`
}

type BookFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}
