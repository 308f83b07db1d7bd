package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pbp/bookorama/internal/auth"
	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

func (s *Server) AllBooks(ctx *gin.Context) {
	noStore(ctx)
	books, err := s.storage.GetBooks()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load books"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": books, "status": "success"})
}

func (s *Server) BookInfo(ctx *gin.Context) {
	noStore(ctx)
	book, err := s.storage.GetBook(ctx.Param("isbn"))
	if err != nil {
		if errors.Is(err, storerrs.ErrBookNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Book not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load book"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": book, "status": "success"})
}

func (s *Server) AddBook(ctx *gin.Context) {
	log := logger.Get()
	identity, _ := auth.IdentityFromContext(ctx)
	var book models.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if book.Price.LessThan(decimal.Zero) {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Price must not be negative"})
		return
	}
	book.AdminID = identity.UID
	if err := s.storage.SaveBook(book); err != nil {
		switch {
		case errors.Is(err, storerrs.ErrBookExists):
			ctx.JSON(http.StatusConflict, gin.H{"status": "error", "message": "Book already exists"})
		case errors.Is(err, storerrs.ErrCategoryNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Unknown category"})
		default:
			log.Error().Err(err).Msg("save book failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to save book"})
		}
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": book, "status": "success", "message": "Book created successfully"})
}

func (s *Server) UpdateBook(ctx *gin.Context) {
	log := logger.Get()
	var book models.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	book.ISBN = ctx.Param("isbn")
	if err := s.valid.Struct(book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if book.Price.LessThan(decimal.Zero) {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Price must not be negative"})
		return
	}
	updated, err := s.storage.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, storerrs.ErrBookNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Book not found"})
		case errors.Is(err, storerrs.ErrCategoryNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Unknown category"})
		default:
			log.Error().Err(err).Msg("update book failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to update book"})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": updated, "status": "success", "message": "Book updated successfully"})
}

func (s *Server) RemoveBook(ctx *gin.Context) {
	if err := s.storage.DeleteBook(ctx.Param("isbn")); err != nil {
		if errors.Is(err, storerrs.ErrBookNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Book not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to delete book"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Book deleted successfully"})
}

func (s *Server) AllCategories(ctx *gin.Context) {
	noStore(ctx)
	categories, err := s.storage.GetCategories()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load categories"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": categories, "status": "success"})
}

func (s *Server) CategoryInfo(ctx *gin.Context) {
	noStore(ctx)
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid category id"})
		return
	}
	category, err := s.storage.GetCategory(id)
	if err != nil {
		if errors.Is(err, storerrs.ErrCategoryNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Category not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load category"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data":    category,
		"status":  "success",
		"message": "Category fetched successfully",
	})
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

func (s *Server) AddCategory(ctx *gin.Context) {
	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Name must not be blank"})
		return
	}
	category, err := s.storage.SaveCategory(models.Category{Name: req.Name})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to create category"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"data":    category,
		"status":  "success",
		"message": "Category created successfully",
	})
}

func (s *Server) UpdateCategory(ctx *gin.Context) {
	log := logger.Get()
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid category id"})
		return
	}
	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	category, err := s.storage.UpdateCategory(models.Category{ID: id, Name: req.Name})
	if err != nil {
		if errors.Is(err, storerrs.ErrCategoryNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Category not found"})
			return
		}
		log.Error().Err(err).Msg("update category failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to update category"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data":    category,
		"status":  "success",
		"message": "Category updated successfully",
	})
}

// RemoveCategory refuses deletion while books still reference the category.
func (s *Server) RemoveCategory(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid category id"})
		return
	}
	if err := s.storage.DeleteCategory(id); err != nil {
		switch {
		case errors.Is(err, storerrs.ErrCategoryNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Category not found"})
		case errors.Is(err, storerrs.ErrCategoryInUse):
			ctx.JSON(http.StatusConflict, gin.H{"status": "error", "message": "Category still has books"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to delete category"})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Category deleted successfully"})
}
