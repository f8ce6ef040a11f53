package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"concierium/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("user inactive")
)

// TokenIssuer emite el token de sesión a partir de los claims.
// Lo implementa el adapter hmactoken; nil => login deshabilitado (modo dev).
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time

	// Inyectables para tests (bcrypt real es lento a cost 10).
	hash    func(password string) (string, error)
	compare func(hash, password string) bool
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
		hash: func(password string) (string, error) {
			b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			return string(b), err
		},
		compare: func(hash, password string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
		},
	}
}

type SignupInput struct {
	FullName      string
	Email         string
	Password      string
	Phone         string
	PreferredLang string
}

// Signup crea la cuenta o la actualiza si el email ya existe (mismo
// comportamiento upsert del alta original). El rol resultante es siempre
// client; un signup nunca escala privilegios de una cuenta existente.
func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" {
		return User{}, ErrInvalidInput
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}

	lang := strings.TrimSpace(in.PreferredLang)
	if lang == "" {
		lang = "es"
	}

	now := s.now()

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		existing.FullName = fullName
		existing.Phone = strings.TrimSpace(in.Phone)
		existing.PreferredLang = lang
		existing.PasswordHash = hash
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return User{}, err
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	u := User{
		ID:            uuid.NewString(),
		FullName:      fullName,
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		PreferredLang: lang,
		Role:          auth.RoleClient,
		IsActive:      true,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

type LoginResult struct {
	User  User
	Token string
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if u.PasswordHash == "" || !s.compare(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return LoginResult{}, ErrInactive
	}

	if s.tokens == nil {
		return LoginResult{}, errors.New("token issuer not configured")
	}
	token, err := s.tokens.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, Token: token}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// EmailOf y NameOf existen para los otros módulos (notifier, dashboard)
// sin exponer el User completo.
func (s *Service) EmailOf(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func (s *Service) NameOf(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.FullName, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
