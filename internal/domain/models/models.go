package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Pass  string `json:"pass,omitempty" validate:"required,min=8"`
	Role  string `json:"role" validate:"omitempty,oneof=customer admin"`
}

// Identity is the resolved session subject passed explicitly into every
// authorized operation.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Book struct {
	ISBN       string          `json:"isbn" validate:"required,min=10"`
	Title      string          `json:"title" validate:"required,min=1"`
	Author     string          `json:"author" validate:"required,min=1"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"categoryId" validate:"required"`
	AdminID    string          `json:"adminId,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1"`
}

// Order is immutable once written. Cart is a by-value snapshot of the books
// at purchase time; later catalog edits never reach back into it.
type Order struct {
	OID       string    `json:"oid,omitempty"`
	UserID    string    `json:"userId"`
	Cart      []Book    `json:"cart"`
	CreatedAt time.Time `json:"createdAt"`
}

// Total sums the snapshot prices. Computed fresh on every call.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range o.Cart {
		total = total.Add(b.Price)
	}
	return total
}
