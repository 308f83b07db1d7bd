package storerrs

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")

	ErrBookNotFound = errors.New("book does not exist")
	ErrBookExists   = errors.New("book already exists")

	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still referenced by books")

	ErrOrderNotFound = errors.New("order not found")

	ErrConflict = errors.New("storage conflict")
)
