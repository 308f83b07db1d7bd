package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

// MemStorage is the fallback store used when the database is unreachable.
// Same contract as DBStorage, maps behind one mutex.
type MemStorage struct {
	mu         sync.RWMutex
	users      map[string]models.User
	books      map[string]models.Book
	categories map[int64]models.Category
	orders     map[string]models.Order
	nextCatID  int64
}

func New() *MemStorage {
	return &MemStorage{
		users:      make(map[string]models.User),
		books:      make(map[string]models.Book),
		categories: make(map[int64]models.Category),
		orders:     make(map[string]models.Order),
		nextCatID:  1,
	}
}

func (ms *MemStorage) SaveUser(user models.User) (string, error) {
	log := logger.Get()
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, err := ms.findUser(user.Email); err == nil {
		return "", storerrs.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("save user failed")
		return "", err
	}
	user.Pass = string(hash)
	user.UID = uuid.New().String()
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	ms.users[user.UID] = user
	return user.UID, nil
}

func (ms *MemStorage) ValidUser(email, pass string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	user, err := ms.findUser(email)
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Pass), []byte(pass)); err != nil {
		return models.User{}, storerrs.ErrInvalidPassword
	}
	return user, nil
}

func (ms *MemStorage) GetUser(uid string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	user, ok := ms.users[uid]
	if !ok {
		return models.User{}, storerrs.ErrUserNotFound
	}
	return user, nil
}

func (ms *MemStorage) GetUserByEmail(email string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.findUser(email)
}

func (ms *MemStorage) UpdateUserName(email, name string) (models.User, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user, err := ms.findUser(email)
	if err != nil {
		return models.User{}, err
	}
	user.Name = name
	ms.users[user.UID] = user
	return user, nil
}

// findUser is called with ms.mu held.
func (ms *MemStorage) findUser(email string) (models.User, error) {
	for _, user := range ms.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storerrs.ErrUserNotFound
}

func (ms *MemStorage) SaveBook(book models.Book) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[book.ISBN]; ok {
		return storerrs.ErrBookExists
	}
	if _, ok := ms.categories[book.CategoryID]; !ok {
		return storerrs.ErrCategoryNotFound
	}
	ms.books[book.ISBN] = book
	return nil
}

func (ms *MemStorage) GetBook(isbn string) (models.Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	book, ok := ms.books[isbn]
	if !ok {
		return models.Book{}, storerrs.ErrBookNotFound
	}
	return book, nil
}

func (ms *MemStorage) GetBooks() ([]models.Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	books := make([]models.Book, 0, len(ms.books))
	for _, book := range ms.books {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ISBN < books[j].ISBN })
	return books, nil
}

func (ms *MemStorage) UpdateBook(book models.Book) (models.Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[book.ISBN]; !ok {
		return models.Book{}, storerrs.ErrBookNotFound
	}
	if _, ok := ms.categories[book.CategoryID]; !ok {
		return models.Book{}, storerrs.ErrCategoryNotFound
	}
	ms.books[book.ISBN] = book
	return book, nil
}

func (ms *MemStorage) DeleteBook(isbn string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[isbn]; !ok {
		return storerrs.ErrBookNotFound
	}
	delete(ms.books, isbn)
	return nil
}

func (ms *MemStorage) SaveCategory(category models.Category) (models.Category, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	category.ID = ms.nextCatID
	ms.nextCatID++
	ms.categories[category.ID] = category
	return category, nil
}

func (ms *MemStorage) GetCategory(id int64) (models.Category, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	category, ok := ms.categories[id]
	if !ok {
		return models.Category{}, storerrs.ErrCategoryNotFound
	}
	return category, nil
}

func (ms *MemStorage) GetCategories() ([]models.Category, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	categories := make([]models.Category, 0, len(ms.categories))
	for _, category := range ms.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (ms *MemStorage) UpdateCategory(category models.Category) (models.Category, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.categories[category.ID]; !ok {
		return models.Category{}, storerrs.ErrCategoryNotFound
	}
	ms.categories[category.ID] = category
	return category, nil
}

// DeleteCategory refuses to delete a category while any book references it.
func (ms *MemStorage) DeleteCategory(id int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.categories[id]; !ok {
		return storerrs.ErrCategoryNotFound
	}
	for _, book := range ms.books {
		if book.CategoryID == id {
			return storerrs.ErrCategoryInUse
		}
	}
	delete(ms.categories, id)
	return nil
}

// SaveOrder stores the order as-is. The cart slice was copied by the caller;
// nothing mutates an order after this point.
func (ms *MemStorage) SaveOrder(order models.Order) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.users[order.UserID]; !ok {
		return "", storerrs.ErrUserNotFound
	}
	if _, ok := ms.orders[order.OID]; ok {
		return "", storerrs.ErrConflict
	}
	ms.orders[order.OID] = order
	return order.OID, nil
}

func (ms *MemStorage) GetOrder(oid string) (models.Order, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	order, ok := ms.orders[oid]
	if !ok {
		return models.Order{}, storerrs.ErrOrderNotFound
	}
	return order, nil
}

func (ms *MemStorage) GetOrders(userID string) ([]models.Order, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	orders := make([]models.Order, 0)
	for _, order := range ms.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (ms *MemStorage) GetAllOrders() ([]models.Order, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	orders := make([]models.Order, 0, len(ms.orders))
	for _, order := range ms.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}
