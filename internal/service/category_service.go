package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type CategoryService struct {
	repo   catalog.CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		logger: logger.Named("CategoryService"),
	}
}

func (s *CategoryService) List(ctx context.Context, search string) ([]catalog.CategoryWithCount, error) {
	categories, err := s.repo.List(ctx, search)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("repository error listing categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*catalog.Category, error) {
	_, err := s.repo.FindByName(ctx, name)
	if err == nil {
		s.logger.Warn("Category name already taken", zap.String("name", name))
		return nil, fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryExists)
	}
	if !errors.Is(err, ierr.ErrNotFound) {
		s.logger.Error("Failed to check category name", zap.Error(err))
		return nil, fmt.Errorf("repository error checking category name: %w", err)
	}

	category := &catalog.Category{Name: name}
	insertedID, err := s.repo.Create(ctx, category)
	if err != nil {
		// Unique index on name closes the race between the check and this
		// insert.
		if errors.Is(err, ierr.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryExists)
		}
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, fmt.Errorf("repository error creating category: %w", err)
	}
	category.ID = insertedID

	s.logger.Info("Category created", zap.String("id", insertedID.String()), zap.String("name", name))
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			return ierr.ErrNotFound
		}
		s.logger.Error("Failed to find category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error finding category: %w", err)
	}

	if err := s.repo.Update(ctx, id, name); err != nil {
		if errors.Is(err, ierr.ErrConflict) {
			return fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryExists)
		}
		s.logger.Error("Failed to update category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error updating category: %w", err)
	}

	s.logger.Info("Category updated", zap.String("id", id.String()), zap.String("name", name))
	return nil
}

// Delete refuses to remove a category that books still reference.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountBooks(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count books in category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error counting books: %w", err)
	}
	if count > 0 {
		s.logger.Warn("Refusing to delete category in use", zap.String("id", id.String()), zap.Int64("books", count))
		return fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryInUse)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error deleting category: %w", err)
	}

	s.logger.Info("Category deleted", zap.String("id", id.String()))
	return nil
}
