package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/jwt"
)

// MinAdminPasswordLen longitud mínima de la contraseña del administrador inicial.
const MinAdminPasswordLen = 12

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, alta de usuarios y bootstrap.
type AuthUseCase struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	jwtCfg       JWTConfig
	log          zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, customerRepo: customerRepo, jwtCfg: jwtCfg, log: log}
}

// CreateUser crea un administrador o un usuario de portal ligado a un cliente.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.Invalid("email", "el email es obligatorio")
	}
	if len(in.Password) < 8 {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}

	var customerID *string
	switch in.Role {
	case entity.RoleAdmin:
	case entity.RoleCustomer:
		if strings.TrimSpace(in.CustomerID) == "" {
			return nil, domain.Invalid("customer_id", "obligatorio para usuarios del portal")
		}
		c, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("customer_id", "el cliente no existe")
		}
		if err != nil {
			return nil, err
		}
		customerID = &c.ID
	default:
		return nil, domain.Invalid("role", "rol inválido %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		CustomerID:   customerID,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y contraseña incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	customerID := ""
	if user.CustomerID != nil {
		customerID = *user.CustomerID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, time.Duration(uc.jwtCfg.ExpMinutes)*time.Minute, jwt.Subject{
		UserID:     user.ID,
		CustomerID: customerID,
		Role:       user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// EnsureAdmin crea el administrador inicial si no existe. Es idempotente: se puede
// llamar en cada arranque. Sin email o password no hace nada.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		uc.log.Warn().Msg("bootstrap: ADMIN_EMAIL o ADMIN_PASSWORD sin definir, no se crea administrador")
		return nil
	}
	if len(password) < MinAdminPasswordLen {
		return fmt.Errorf("bootstrap: la contraseña del administrador debe tener al menos %d caracteres", MinAdminPasswordLen)
	}

	_, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err == nil {
		uc.log.Info().Str("email", email).Msg("bootstrap: el administrador ya existe")
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("bootstrap: buscar administrador: %w", err)
	}

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		// otra instancia lo creó entre la consulta y el insert
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap: crear administrador: %w", err)
	}
	uc.log.Info().Str("email", email).Msg("bootstrap: administrador creado")
	return nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		CustomerID: u.CustomerID,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
