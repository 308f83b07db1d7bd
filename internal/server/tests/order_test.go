package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/server"
	"github.com/pbp/bookorama/internal/server/mocks"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

const orderBody = `{
	"cart": [
		{"isbn": "A", "title": "Book A", "author": "a", "price": 50000, "categoryId": 1},
		{"isbn": "B", "title": "Book B", "author": "b", "price": 30000, "categoryId": 1}
	],
	"userId": "uid-7"
}`

func TestCreateOrder_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no expectations: nothing may be written without a session
	mockStorage := mocks.NewMockStorage(ctrl)
	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var saved models.Order
	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().SaveOrder(gomock.Any()).DoAndReturn(func(o models.Order) (string, error) {
		saved = o
		return o.OID, nil
	})
	mockStorage.EXPECT().GetOrder(gomock.Any()).DoAndReturn(func(oid string) (models.Order, error) {
		return saved, nil
	})

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodPost, "/api/order", orderBody))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, customerIdentity.UID, saved.UserID)
	require.Len(t, saved.Cart, 2)
	assert.Equal(t, "A", saved.Cart[0].ISBN)
	assert.True(t, saved.Cart[0].Price.Equal(decimal.NewFromInt(50000)))
	assert.True(t, saved.Total().Equal(decimal.NewFromInt(80000)))
	assert.WithinDuration(t, time.Now().UTC(), saved.CreatedAt, time.Minute)
	assert.Contains(t, w.Body.String(), "Order created successfully")
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// empty cart must cause zero storage writes
	mockStorage := mocks.NewMockStorage(ctrl)
	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodPost, "/api/order", `{"cart": [], "userId": "uid-7"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")
}

func TestCreateOrder_OwnerMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	body := `{"cart": [{"isbn": "A", "title": "Book A", "author": "a", "price": 50000, "categoryId": 1}], "userId": "somebody-else"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodPost, "/api/order", body))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrder_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().SaveOrder(gomock.Any()).Return("", storerrs.ErrConflict)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodPost, "/api/order", orderBody))

	// generic failure notice, no internal detail leaked
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Order could not be placed")
	assert.NotContains(t, w.Body.String(), "conflict")
}

func TestOrderInfo_OwnerOrAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order := models.Order{
		OID:    "order-1",
		UserID: customerIdentity.UID,
		Cart:   []models.Book{{ISBN: "A", Price: decimal.NewFromInt(50000)}},
	}
	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().GetOrder("order-1").Return(order, nil).Times(3)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	// owner sees it
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodGet, "/api/order/order-1", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	// admin sees it
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, adminIdentity, http.MethodGet, "/api/order/order-1", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	// another customer does not
	other := models.Identity{UID: "uid-9", Email: "x@example.com", Role: models.RoleCustomer}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, other, http.MethodGet, "/api/order/order-1", ""))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrders_AdminSeesAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().GetAllOrders().Return([]models.Order{}, nil)
	mockStorage.EXPECT().GetOrders(customerIdentity.UID).Return([]models.Order{}, nil)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, adminIdentity, http.MethodGet, "/api/orders", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodGet, "/api/orders", ""))
	assert.Equal(t, http.StatusOK, w.Code)
}
