package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/handler/dto"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/service"
)

type BookHandler struct {
	service       *service.BookService
	maxCoverBytes int64
	logger        *zap.Logger
}

func NewBookHandler(service *service.BookService, maxCoverBytes int64, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		service:       service,
		maxCoverBytes: maxCoverBytes,
		logger:        logger.Named("BookHandler"),
	}
}

func (h *BookHandler) List(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reportBindingError(c, err)
		return
	}

	filter := catalog.BookFilter{
		CategoryID: req.CategoryID,
		Search:     req.Search,
		Limit:      req.Limit,
		Offset:     (req.Page - 1) * req.Limit,
	}

	books, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.BookResponse, len(books))
	for i := range books {
		responses[i] = dto.NewBookResponse(&books[i])
	}
	c.JSON(http.StatusOK, dto.OK("", responses))
}

func (h *BookHandler) Create(c *gin.Context) {
	input, ok := h.bindBookForm(c)
	if !ok {
		return
	}

	book, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Book created via handler", zap.String("id", book.ID.String()))
	c.JSON(http.StatusCreated, dto.OK("Book created successfully", gin.H{"id": book.ID}))
}

func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid book id", ierr.ErrValidation))
		return
	}

	input, ok := h.bindBookForm(c)
	if !ok {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, input); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Book updated successfully", nil))
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid book id", ierr.ErrValidation))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Book deleted successfully", nil))
}

// bindBookForm binds the multipart fields and, when an "image" file is
// attached, reads it subject to the configured size cap.
func (h *BookHandler) bindBookForm(c *gin.Context) (*service.BookInput, bool) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("Failed to bind book form", zap.Error(err))
		reportBindingError(c, err)
		return nil, false
	}

	input := &service.BookInput{
		Title:       form.Title,
		Author:      form.Author,
		Publisher:   form.Publisher,
		Year:        form.Year,
		CategoryID:  form.CategoryID,
		ISBN:        form.ISBN,
		Description: form.Description,
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return input, true
		}
		// Not a multipart request at all is fine; books without covers can
		// be sent as a plain form.
		return input, true
	}

	if fileHeader.Size > h.maxCoverBytes {
		_ = c.Error(fmt.Errorf("%w: cover image exceeds %d bytes", ierr.ErrValidation, h.maxCoverBytes))
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded cover", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: reading upload failed", ierr.ErrInternalServer))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxCoverBytes+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded cover", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: reading upload failed", ierr.ErrInternalServer))
		return nil, false
	}
	if int64(len(data)) > h.maxCoverBytes {
		_ = c.Error(fmt.Errorf("%w: cover image exceeds %d bytes", ierr.ErrValidation, h.maxCoverBytes))
		return nil, false
	}

	input.Cover = &service.CoverUpload{
		Data: data,
		Ext:  filepath.Ext(fileHeader.Filename),
	}
	return input, true
}
