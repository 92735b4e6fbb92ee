package memstorage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*catalog.Category
	books      *BookRepository
}

func NewCategoryRepository(books *BookRepository) *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[uuid.UUID]*catalog.Category),
		books:      books,
	}
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) List(ctx context.Context, search string) ([]catalog.CategoryWithCount, error) {
	r.mu.RLock()
	var matched []catalog.Category
	for _, c := range r.categories {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, *c)
	}
	r.mu.RUnlock()

	var out []catalog.CategoryWithCount
	for _, c := range matched {
		count, _ := r.books.countByCategory(c.ID)
		out = append(out, catalog.CategoryWithCount{Category: c, BookCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, ierr.ErrNotFound
	}
	copyC := *c
	return &copyC, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			copyC := *c
			return &copyC, nil
		}
	}
	return nil, ierr.ErrNotFound
}

func (r *CategoryRepository) Create(ctx context.Context, category *catalog.Category) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Name == category.Name {
			return uuid.Nil, ierr.ErrConflict
		}
	}

	stored := *category
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	r.categories[stored.ID] = &stored
	return stored.ID, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return ierr.ErrNotFound
	}
	for otherID, other := range r.categories {
		if otherID != id && other.Name == name {
			return ierr.ErrConflict
		}
	}
	c.Name = name
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return ierr.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) CountBooks(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return r.books.countByCategory(categoryID)
}

type BookRepository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]*catalog.Book

	categoryName func(id uuid.UUID) (string, bool)
}

func NewBookRepository() *BookRepository {
	return &BookRepository{books: make(map[uuid.UUID]*catalog.Book)}
}

// Bind wires the category lookup used to fill category names in listings.
func (r *BookRepository) Bind(categories *CategoryRepository) {
	r.categoryName = func(id uuid.UUID) (string, bool) {
		c, err := categories.FindByID(context.Background(), id)
		if err != nil {
			return "", false
		}
		return c.Name, true
	}
}

var _ catalog.BookRepository = (*BookRepository)(nil)

func (r *BookRepository) countByCategory(categoryID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, b := range r.books {
		if b.CategoryID.Valid && b.CategoryID.UUID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *BookRepository) List(ctx context.Context, filter catalog.BookFilter) ([]catalog.BookWithCategory, error) {
	r.mu.RLock()
	var all []catalog.BookWithCategory
	for _, b := range r.books {
		all = append(all, catalog.BookWithCategory{Book: *b})
	}
	r.mu.RUnlock()

	for i := range all {
		if all[i].CategoryID.Valid && r.categoryName != nil {
			if name, ok := r.categoryName(all[i].CategoryID.UUID); ok {
				all[i].CategoryName.String = name
				all[i].CategoryName.Valid = true
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	var filtered []catalog.BookWithCategory
	search := strings.ToLower(filter.Search)
	for _, b := range all {
		if filter.CategoryID != nil && (!b.CategoryID.Valid || b.CategoryID.UUID != *filter.CategoryID) {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.CategoryName.String)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		filtered = append(filtered, b)
	}

	if filter.Offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(filtered) {
		filtered = filtered[:filter.Limit]
	}
	return filtered, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, ierr.ErrNotFound
	}
	copyB := *b
	return &copyB, nil
}

func (r *BookRepository) Create(ctx context.Context, book *catalog.Book) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *book
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.books[stored.ID] = &stored
	return stored.ID, nil
}

func (r *BookRepository) Update(ctx context.Context, book *catalog.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.books[book.ID]
	if !ok {
		return ierr.ErrNotFound
	}
	updated := *book
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.books[book.ID] = &updated
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ierr.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *BookRepository) ListCovers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var covers []string
	for _, b := range r.books {
		if b.Cover.Valid {
			covers = append(covers, b.Cover.String)
		}
	}
	return covers, nil
}
