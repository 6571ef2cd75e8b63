package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer" // usuario del portal, ligado a un Customer
)

// Estados de cuenta.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa una cuenta que puede autenticarse: administrador o cliente del portal.
type User struct {
	ID           string
	Email        string
	PasswordHash string  // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string  // admin, customer
	CustomerID   *string // obligatorio si Role == customer
	Status       string  // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
