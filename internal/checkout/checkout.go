// Package checkout converts a cart snapshot into a persisted order under an
// authenticated identity.
package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmptyCart       = errors.New("empty cart")
	ErrPersistence     = errors.New("order write failed")
)

// Storage is the slice of the persistence layer checkout needs: a single
// atomic order write.
type Storage interface {
	SaveOrder(models.Order) (string, error)
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

// SubmitOrder persists exactly one order for the identity, or nothing.
// Validation failures never reach storage. On a storage failure the caller's
// cart must stay intact so the submission can be retried; the caller clears
// the cart only after a nil error here.
//
// There is no idempotency key: a retry after a timed-out-but-committed write
// can create a duplicate order.
func (s *Service) SubmitOrder(identity models.Identity, snapshot []models.Book) (string, error) {
	log := logger.Get()
	if identity.UID == "" {
		return "", ErrUnauthenticated
	}
	if len(snapshot) == 0 {
		return "", ErrEmptyCart
	}
	order := models.Order{
		OID:       uuid.New().String(),
		UserID:    identity.UID,
		Cart:      append([]models.Book(nil), snapshot...),
		CreatedAt: time.Now().UTC(),
	}
	oid, err := s.storage.SaveOrder(order)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Msg("order write failed")
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	log.Debug().Str("oid", oid).Str("uid", identity.UID).
		Int("items", len(order.Cart)).Msg("order placed")
	return oid, nil
}
