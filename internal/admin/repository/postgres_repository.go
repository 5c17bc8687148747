package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/ridloal/woodkits-store/internal/platform/database"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

var ErrAdminNotFound = errors.New("admin not found")
var ErrAdminConflict = errors.New("admin with this email already exists")

type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*domain.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}

type postgresAdminRepository struct {
	db *sql.DB
}

func NewPostgresAdminRepository(db *sql.DB) AdminRepository {
	return &postgresAdminRepository{db: db}
}

func (r *postgresAdminRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (email, name, password_hash, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`

	admin.CreatedAt = time.Now()
	admin.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query, admin.Email, admin.Name, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAdminConflict
		}
		logger.Error("CreateAdmin: failed to insert admin", err)
		return err
	}
	return nil
}

func (r *postgresAdminRepository) getAdminBy(ctx context.Context, field, value string) (*domain.Admin, error) {
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM admins WHERE ` + field + ` = $1`
	admin := &domain.Admin{}

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		logger.Error("GetAdminBy"+strings.ToUpper(field[:1])+field[1:]+": query failed", err)
		return nil, err
	}
	return admin, nil
}

func (r *postgresAdminRepository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.getAdminBy(ctx, "email", email)
}

func (r *postgresAdminRepository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.getAdminBy(ctx, "id", id)
}

func (r *postgresAdminRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		logger.Error("CountAdmins: query failed", err)
		return 0, err
	}
	return n, nil
}
