package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pbp/bookorama/internal/auth"
	"github.com/pbp/bookorama/internal/domain/consts"
	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Pass     string `json:"pass" validate:"required,min=8"`
	AdminKey string `json:"adminKey"`
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"pass" validate:"required"`
}

func (s *Server) Register(ctx *gin.Context) {
	log := logger.Get()
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	role := models.RoleCustomer
	if s.adminKey != "" && req.AdminKey == s.adminKey {
		role = models.RoleAdmin
	}
	uid, err := s.storage.SaveUser(models.User{
		Email: req.Email,
		Name:  req.Name,
		Pass:  req.Pass,
		Role:  role,
	})
	if err != nil {
		if errors.Is(err, storerrs.ErrUserExists) {
			ctx.String(http.StatusConflict, "User already exists")
			return
		}
		log.Error().Err(err).Msg("save user failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.startSession(ctx, models.Identity{UID: uid, Email: req.Email, Role: role})
	ctx.JSON(http.StatusCreated, gin.H{
		"data":   gin.H{"uid": uid, "email": req.Email, "name": req.Name, "role": role},
		"status": "success",
	})
}

func (s *Server) Login(ctx *gin.Context) {
	log := logger.Get()
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	user, err := s.storage.ValidUser(req.Email, req.Pass)
	if err != nil {
		if errors.Is(err, storerrs.ErrUserNotFound) {
			ctx.String(http.StatusNotFound, "invalid login or password")
			return
		}
		if errors.Is(err, storerrs.ErrInvalidPassword) {
			ctx.String(http.StatusUnauthorized, "invalid login or password")
			return
		}
		log.Error().Err(err).Msg("validate user failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.startSession(ctx, models.Identity{UID: user.UID, Email: user.Email, Role: user.Role})
	ctx.JSON(http.StatusOK, gin.H{
		"data":   gin.H{"uid": user.UID, "email": user.Email, "name": user.Name, "role": user.Role},
		"status": "success",
	})
}

func (s *Server) Logout(ctx *gin.Context) {
	ctx.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out"})
}

// startSession issues the token, sets the session cookie and mirrors the
// token in the Authorization header for non-browser clients.
func (s *Server) startSession(ctx *gin.Context, id models.Identity) {
	log := logger.Get()
	token, err := s.sessions.Issue(id)
	if err != nil {
		log.Error().Err(err).Msg("create session token failed")
		return
	}
	ctx.SetCookie(auth.SessionCookie, token, int(consts.SessionTTL.Seconds()), "/", "", false, true)
	ctx.Header("Authorization", token)
}

// SessionProbe reports whether the request carries a valid session.
func (s *Server) SessionProbe(ctx *gin.Context) {
	if _, err := s.sessions.Authorize(auth.TokenFromRequest(ctx)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (s *Server) Profile(ctx *gin.Context) {
	log := logger.Get()
	noStore(ctx)
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	user, err := s.storage.GetUserByEmail(identity.Email)
	if err != nil {
		// A live session without a backing user row is an invariant
		// violation, not a client error.
		log.Error().Err(err).Str("email", identity.Email).Msg("session without user row")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load profile"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data":   gin.H{"name": user.Name, "email": user.Email, "role": user.Role},
		"status": "success",
	})
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) UpdateProfile(ctx *gin.Context) {
	log := logger.Get()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "incorrectly entered data"})
		return
	}
	// Blank names are rejected before any write is attempted.
	if strings.TrimSpace(req.Name) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Name must not be blank"})
		return
	}
	user, err := s.storage.UpdateUserName(identity.Email, req.Name)
	if err != nil {
		log.Error().Err(err).Msg("update profile failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to update profile"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data":    gin.H{"name": user.Name, "email": user.Email, "role": user.Role},
		"status":  "success",
		"message": "Profile updated successfully",
	})
}
