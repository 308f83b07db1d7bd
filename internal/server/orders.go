package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pbp/bookorama/internal/auth"
	"github.com/pbp/bookorama/internal/checkout"
	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

type orderRequest struct {
	Cart   []models.Book `json:"cart"`
	UserID string        `json:"userId"`
}

// CreateOrder turns the submitted cart snapshot into a persisted order. The
// client keeps its cart until this responds with success; any failure here
// must leave it free to retry.
func (s *Server) CreateOrder(ctx *gin.Context) {
	log := logger.Get()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	var req orderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	// Owner check: a customer may only place orders for themselves. The
	// userId field is advisory; the session identity is authoritative.
	if req.UserID != "" && req.UserID != identity.UID {
		ctx.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Access denied"})
		return
	}

	oid, err := s.checkout.SubmitOrder(identity, req.Cart)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Cart is empty"})
		case errors.Is(err, checkout.ErrUnauthenticated):
			ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		default:
			// Internal detail stays out of the response; the client keeps
			// its cart and may retry.
			log.Error().Err(err).Msg("checkout failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Order could not be placed"})
		}
		return
	}

	order, err := s.storage.GetOrder(oid)
	if err != nil {
		// The write was acknowledged; report success even if the read-back
		// failed.
		log.Error().Err(err).Str("oid", oid).Msg("read back created order failed")
		ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"oid": oid}, "status": "success"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"data":    order,
		"status":  "success",
		"message": "Order created successfully",
	})
}

func (s *Server) OrderInfo(ctx *gin.Context) {
	noStore(ctx)
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	order, err := s.storage.GetOrder(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, storerrs.ErrOrderNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Order not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load order"})
		return
	}
	// Orders are visible to their owner or to an admin.
	if order.UserID != identity.UID && identity.Role != models.RoleAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Access denied"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": order, "status": "success"})
}

func (s *Server) Orders(ctx *gin.Context) {
	log := logger.Get()
	noStore(ctx)
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	var (
		orders []models.Order
		err    error
	)
	if identity.Role == models.RoleAdmin {
		orders, err = s.storage.GetAllOrders()
	} else {
		orders, err = s.storage.GetOrders(identity.UID)
	}
	if err != nil {
		log.Error().Err(err).Msg("load orders failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load orders"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": orders, "status": "success"})
}
