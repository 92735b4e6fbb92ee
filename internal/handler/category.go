package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/handler/dto"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/service"
)

type CategoryHandler struct {
	service *service.CategoryService
	logger  *zap.Logger
}

func NewCategoryHandler(service *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.Named("CategoryHandler"),
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	var req dto.ListCategoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reportBindingError(c, err)
		return
	}

	categories, err := h.service.List(c.Request.Context(), req.Search)
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = dto.NewCategoryResponse(&categories[i])
	}
	c.JSON(http.StatusOK, dto.OK("", responses))
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind create category request", zap.Error(err))
		reportBindingError(c, err)
		return
	}

	category, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Category created via handler", zap.String("id", category.ID.String()))
	c.JSON(http.StatusCreated, dto.OK("Category created successfully", gin.H{
		"id":   category.ID,
		"name": category.Name,
	}))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid category id", ierr.ErrValidation))
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind update category request", zap.Error(err))
		reportBindingError(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req.Name); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Category updated", nil))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid category id", ierr.ErrValidation))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Category deleted", nil))
}
