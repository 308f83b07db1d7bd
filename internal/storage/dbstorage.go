package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/pbp/bookorama/internal/domain/consts"
	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
	storerrs "github.com/pbp/bookorama/internal/storage/errors"
)

type DBStorage struct {
	conn *pgx.Conn
}

func NewDB(ctx context.Context, addr string) (*DBStorage, error) {
	conn, err := pgx.Connect(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &DBStorage{
		conn: conn,
	}, nil
}

func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), consts.DBCtxTimeout)
}

func (dbs *DBStorage) SaveUser(user models.User) (string, error) {
	log := logger.Get()
	ctx, cancel := dbCtx()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("hash password failed")
		return "", err
	}
	user.UID = uuid.New().String()
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	_, err = dbs.conn.Exec(ctx,
		"INSERT INTO users (uid, email, name, pass, role) VALUES ($1, $2, $3, $4, $5)",
		user.UID, user.Email, user.Name, string(hash), user.Role)
	if err != nil {
		if isPgCode(err, pgerrcode.UniqueViolation) {
			return "", storerrs.ErrUserExists
		}
		log.Error().Err(err).Msg("failed to insert user")
		return "", err
	}
	return user.UID, nil
}

func (dbs *DBStorage) ValidUser(email, pass string) (models.User, error) {
	log := logger.Get()
	user, err := dbs.GetUserByEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Pass), []byte(pass)); err != nil {
		log.Debug().Str("email", email).Msg("password mismatch")
		return models.User{}, storerrs.ErrInvalidPassword
	}
	return user, nil
}

func (dbs *DBStorage) GetUser(uid string) (models.User, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"SELECT uid, email, name, pass, role FROM users WHERE uid = $1", uid)
	return scanUser(row)
}

func (dbs *DBStorage) GetUserByEmail(email string) (models.User, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"SELECT uid, email, name, pass, role FROM users WHERE email = $1", email)
	return scanUser(row)
}

func (dbs *DBStorage) UpdateUserName(email, name string) (models.User, error) {
	log := logger.Get()
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"UPDATE users SET name = $1 WHERE email = $2 RETURNING uid, email, name, pass, role",
		name, email)
	user, err := scanUser(row)
	if err != nil {
		log.Error().Err(err).Msg("failed to update user name")
		return models.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.UID, &user.Email, &user.Name, &user.Pass, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storerrs.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (dbs *DBStorage) SaveBook(book models.Book) error {
	log := logger.Get()
	ctx, cancel := dbCtx()
	defer cancel()
	_, err := dbs.conn.Exec(ctx,
		"INSERT INTO books (isbn, title, author, price, category_id, admin_id) VALUES ($1, $2, $3, $4, $5, $6)",
		book.ISBN, book.Title, book.Author, book.Price, book.CategoryID, book.AdminID)
	if err != nil {
		if isPgCode(err, pgerrcode.UniqueViolation) {
			return storerrs.ErrBookExists
		}
		if isPgCode(err, pgerrcode.ForeignKeyViolation) {
			return storerrs.ErrCategoryNotFound
		}
		log.Error().Err(err).Msg("failed to insert book")
		return err
	}
	return nil
}

func (dbs *DBStorage) GetBook(isbn string) (models.Book, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"SELECT isbn, title, author, price, category_id, admin_id FROM books WHERE isbn = $1", isbn)
	var book models.Book
	err := row.Scan(&book.ISBN, &book.Title, &book.Author, &book.Price, &book.CategoryID, &book.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, storerrs.ErrBookNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}

func (dbs *DBStorage) GetBooks() ([]models.Book, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	rows, err := dbs.conn.Query(ctx,
		"SELECT isbn, title, author, price, category_id, admin_id FROM books ORDER BY isbn")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ISBN, &book.Title, &book.Author, &book.Price,
			&book.CategoryID, &book.AdminID); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (dbs *DBStorage) UpdateBook(book models.Book) (models.Book, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	tag, err := dbs.conn.Exec(ctx,
		"UPDATE books SET title = $1, author = $2, price = $3, category_id = $4 WHERE isbn = $5",
		book.Title, book.Author, book.Price, book.CategoryID, book.ISBN)
	if err != nil {
		if isPgCode(err, pgerrcode.ForeignKeyViolation) {
			return models.Book{}, storerrs.ErrCategoryNotFound
		}
		return models.Book{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Book{}, storerrs.ErrBookNotFound
	}
	return dbs.GetBook(book.ISBN)
}

func (dbs *DBStorage) DeleteBook(isbn string) error {
	ctx, cancel := dbCtx()
	defer cancel()
	tag, err := dbs.conn.Exec(ctx, "DELETE FROM books WHERE isbn = $1", isbn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrs.ErrBookNotFound
	}
	return nil
}

func (dbs *DBStorage) SaveCategory(category models.Category) (models.Category, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", category.Name)
	if err := row.Scan(&category.ID); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (dbs *DBStorage) GetCategory(id int64) (models.Category, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx, "SELECT id, name FROM categories WHERE id = $1", id)
	var category models.Category
	if err := row.Scan(&category.ID, &category.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, storerrs.ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

func (dbs *DBStorage) GetCategories() ([]models.Category, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	rows, err := dbs.conn.Query(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (dbs *DBStorage) UpdateCategory(category models.Category) (models.Category, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	tag, err := dbs.conn.Exec(ctx,
		"UPDATE categories SET name = $1 WHERE id = $2", category.Name, category.ID)
	if err != nil {
		return models.Category{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Category{}, storerrs.ErrCategoryNotFound
	}
	return category, nil
}

// DeleteCategory relies on the RESTRICT constraint on books.category_id;
// a referenced category surfaces as ErrCategoryInUse.
func (dbs *DBStorage) DeleteCategory(id int64) error {
	ctx, cancel := dbCtx()
	defer cancel()
	tag, err := dbs.conn.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		if isPgCode(err, pgerrcode.ForeignKeyViolation) {
			return storerrs.ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrs.ErrCategoryNotFound
	}
	return nil
}

// SaveOrder writes the order in a single insert; the cart snapshot travels
// as one jsonb value, so the write is atomic and the snapshot immutable.
func (dbs *DBStorage) SaveOrder(order models.Order) (string, error) {
	log := logger.Get()
	ctx, cancel := dbCtx()
	defer cancel()
	snapshot, err := json.Marshal(order.Cart)
	if err != nil {
		return "", err
	}
	_, err = dbs.conn.Exec(ctx,
		"INSERT INTO orders (oid, user_id, cart, created_at) VALUES ($1, $2, $3, $4)",
		order.OID, order.UserID, snapshot, order.CreatedAt)
	if err != nil {
		if isPgCode(err, pgerrcode.UniqueViolation) {
			return "", storerrs.ErrConflict
		}
		if isPgCode(err, pgerrcode.ForeignKeyViolation) {
			return "", storerrs.ErrUserNotFound
		}
		log.Error().Err(err).Msg("failed to insert order")
		return "", err
	}
	return order.OID, nil
}

func (dbs *DBStorage) GetOrder(oid string) (models.Order, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	row := dbs.conn.QueryRow(ctx,
		"SELECT oid, user_id, cart, created_at FROM orders WHERE oid = $1", oid)
	return scanOrder(row)
}

func (dbs *DBStorage) GetOrders(userID string) ([]models.Order, error) {
	return dbs.queryOrders("SELECT oid, user_id, cart, created_at FROM orders WHERE user_id = $1 ORDER BY created_at", userID)
}

func (dbs *DBStorage) GetAllOrders() ([]models.Order, error) {
	return dbs.queryOrders("SELECT oid, user_id, cart, created_at FROM orders ORDER BY created_at")
}

func (dbs *DBStorage) queryOrders(query string, args ...any) ([]models.Order, error) {
	ctx, cancel := dbCtx()
	defer cancel()
	rows, err := dbs.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	var snapshot []byte
	if err := row.Scan(&order.OID, &order.UserID, &snapshot, &order.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, storerrs.ErrOrderNotFound
		}
		return models.Order{}, err
	}
	if err := json.Unmarshal(snapshot, &order.Cart); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func Migrations(dbDsn string, migrationsPath string) error {
	log := logger.Get()
	migratePath := fmt.Sprintf("file://%s", migrationsPath)
	m, err := migrate.New(migratePath, dbDsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("no migrations to apply")
			return nil
		}
		return err
	}
	log.Info().Msg("all migrations applied")
	return nil
}
