package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/server"
	"github.com/pbp/bookorama/internal/server/mocks"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

func TestCategoryInfo_NoAuthRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().GetCategory(int64(1)).Return(models.Category{ID: 1, Name: "Fiction"}, nil)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/api/category/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Fiction"`)
	assert.Contains(t, w.Body.String(), "Category fetched successfully")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCategoryInfo_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().GetCategory(int64(42)).Return(models.Category{}, storerrs.ErrCategoryNotFound)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/api/category/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCategory_RequiresAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no storage expectations: denied requests stop at the gate
	mockStorage := mocks.NewMockStorage(ctrl)
	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	// unauthenticated
	req := httptest.NewRequest(http.MethodPut, "/api/category/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// authenticated but not admin
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, customerIdentity, http.MethodPut, "/api/category/1", `{"name":"Renamed"}`))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateCategory_Admin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().UpdateCategory(models.Category{ID: 1, Name: "Renamed"}).
		Return(models.Category{ID: 1, Name: "Renamed"}, nil)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, adminIdentity, http.MethodPut, "/api/category/1", `{"name":"Renamed"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Category updated successfully")
}

func TestRemoveCategory_StillReferenced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().DeleteCategory(int64(1)).Return(storerrs.ErrCategoryInUse)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, adminIdentity, http.MethodDelete, "/api/category/1", ""))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Category still has books")
}

func TestRemoveCategory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	mockStorage.EXPECT().DeleteCategory(int64(2)).Return(nil)

	s := server.New(testConfig(), mockStorage)
	router := setupRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, adminIdentity, http.MethodDelete, "/api/category/2", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Category deleted successfully")
}
