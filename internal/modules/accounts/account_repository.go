package accounts

import (
	"context"
	"errors"
	"fmt"

	"delivery-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for interacting with account storage.
type RepositoryInterface interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

func (r *Repository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (name, email, phone, password_hash, is_vendor, is_rider, is_chef)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	created := *account
	err := r.db.QueryRow(ctx, query,
		account.Name, account.Email, account.Phone, account.PasswordHash,
		account.IsVendor, account.IsRider, account.IsChef,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return &created, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT id, name, email, phone, is_vendor, is_rider, is_chef, created_at, updated_at FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Name, &account.Email, &account.Phone,
		&account.IsVendor, &account.IsRider, &account.IsChef, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return account, nil
}

// FindByEmail also loads the password hash.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT id, name, email, phone, password_hash, is_vendor, is_rider, is_chef, created_at, updated_at FROM accounts WHERE email = $1`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&account.ID, &account.Name, &account.Email, &account.Phone, &account.PasswordHash,
		&account.IsVendor, &account.IsRider, &account.IsChef, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return account, nil
}
