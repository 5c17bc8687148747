package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/ridloal/woodkits-store/internal/admin/repository"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminAlreadyExists = errors.New("admin with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const roleAdmin = "admin"

type AdminService interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	CreateAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error)
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	// EnsureBootstrapAdmin creates the first admin account when none exist.
	EnsureBootstrapAdmin(ctx context.Context, email, password string) error
	ParseToken(token string) (*domain.Claims, error)
}

type adminService struct {
	repo     repository.AdminRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAdminService(repo repository.AdminRepository, secret string, tokenTTL time.Duration) AdminService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &adminService{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

func (s *adminService) CreateAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("CreateAdmin: failed to hash password", err)
		return nil, fmt.Errorf("could not process admin: %w", err)
	}

	admin := &domain.Admin{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrAdminConflict) {
			return nil, ErrAdminAlreadyExists
		}
		logger.Error("CreateAdmin: failed to create admin in repo", err)
		return nil, fmt.Errorf("could not save admin: %w", err)
	}

	admin.PasswordHash = ""
	return admin, nil
}

func (s *adminService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrAdminNotFound) {
			logger.Error("Login: failed to get admin by email", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"role":  roleAdmin,
		"iat":   s.now().Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		logger.Error("Login: failed to sign token", err)
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	admin.PasswordHash = ""
	return &domain.LoginResponse{
		Admin:     *admin,
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *adminService) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, err
	}
	admin.PasswordHash = ""
	return admin, nil
}

func (s *adminService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	n, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	admin, err := s.CreateAdmin(ctx, domain.CreateAdminRequest{Email: email, Name: "Owner", Password: password})
	if err != nil {
		if errors.Is(err, ErrAdminAlreadyExists) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", logger.Fields{"admin_id": admin.ID, "email": admin.Email})
	return nil
}

func (s *adminService) ParseToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	if sub == "" || role != roleAdmin {
		return nil, ErrInvalidToken
	}
	return &domain.Claims{AdminID: sub, Email: email, Role: role}, nil
}
