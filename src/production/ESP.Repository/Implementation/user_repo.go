package implementation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create inserts a new user. The email column carries a unique constraint;
// a conflict surfaces as ErrDuplicateEmail.
func (r *PostgresUserRepository) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `
		INSERT INTO users (user_id, email, password, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Email, user.Password,
		user.Name, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, espmodels.ErrDuplicateEmail
		}
		return nil, storeErr("create user", err)
	}

	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*auth_models.User, error) {
	query := `SELECT user_id, email, password, name, role, created_at, updated_at FROM users WHERE email = $1`

	var user auth_models.User

	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.UserID, &user.Email,
		&user.Password, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("get user by email", err)
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	query := `SELECT user_id, email, password, name, role, created_at, updated_at FROM users WHERE user_id = $1`

	var user auth_models.User

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.UserID, &user.Email,
		&user.Password, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("get user by id", err)
	}

	return &user, nil
}
