package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, password, role, name, email, created_at, last_login"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	var role string
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Password, &role, &u.Name, &u.Email, &u.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// GetByID loads a user with stored permissions and category grants.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user.Permissions, err = r.loadPermissions(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername loads a user by login name with stored permissions.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user.Permissions, err = r.loadPermissions(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) loadPermissions(userID string) (models.Permissions, error) {
	perms := models.Permissions{Categories: []string{}}

	row := r.db.QueryRow(`
		SELECT can_create, can_edit, can_delete, can_manage_users, can_view_reports, can_manage_categories
		FROM user_permissions WHERE user_id = ?`, userID)
	err := row.Scan(&perms.CanCreate, &perms.CanEdit, &perms.CanDelete,
		&perms.CanManageUsers, &perms.CanViewReports, &perms.CanManageCategories)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return perms, err
	}

	rows, err := r.db.Query("SELECT category_id FROM user_categories WHERE user_id = ?", userID)
	if err != nil {
		return perms, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return perms, err
		}
		perms.Categories = append(perms.Categories, id)
	}
	return perms, rows.Err()
}

// List returns every user ordered by creation, permissions loaded and the
// avatar joined in as a data URL where one exists.
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.username, u.password, u.role, u.name, u.email, u.created_at, u.last_login, a.data
		FROM users u
		LEFT JOIN avatars a ON a.user_id = u.id
		ORDER BY u.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var role string
		var lastLogin sql.NullTime
		var avatarData sql.NullString
		err := rows.Scan(&u.ID, &u.Username, &u.Password, &role, &u.Name, &u.Email, &u.CreatedAt, &lastLogin, &avatarData)
		if err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		if avatarData.Valid {
			u.AvatarURL = avatarData.String
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Permissions, err = r.loadPermissions(users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Create inserts the user with its permission row and category grants in a
// single transaction.
func (r *UserRepository) Create(user *models.User) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO users (id, username, password, role, name, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Password, string(user.Role), user.Name, user.Email,
		config.FormatTime(user.CreatedAt))
	if err != nil {
		return err
	}
	if err := writePermissions(tx, user.ID, user.Permissions); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the user row, its permission flags and category grants.
func (r *UserRepository) Update(user *models.User) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE users SET username = ?, password = ?, role = ?, name = ?, email = ?
		WHERE id = ?`,
		user.Username, user.Password, string(user.Role), user.Name, user.Email, user.ID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM user_permissions WHERE user_id = ?", user.ID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM user_categories WHERE user_id = ?", user.ID); err != nil {
		return err
	}
	if err := writePermissions(tx, user.ID, user.Permissions); err != nil {
		return err
	}
	return tx.Commit()
}

func writePermissions(tx *sql.Tx, userID string, perms models.Permissions) error {
	_, err := tx.Exec(`
		INSERT INTO user_permissions
			(user_id, can_create, can_edit, can_delete, can_manage_users, can_view_reports, can_manage_categories)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, perms.CanCreate, perms.CanEdit, perms.CanDelete,
		perms.CanManageUsers, perms.CanViewReports, perms.CanManageCategories)
	if err != nil {
		return err
	}
	for _, categoryID := range perms.Categories {
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO user_categories (user_id, category_id) VALUES (?, ?)",
			userID, categoryID)
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user; permission rows, grants, avatar and sessions go
// with it through the foreign keys.
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// StampLastLogin records a successful login.
func (r *UserRepository) StampLastLogin(id string, at time.Time) error {
	_, err := r.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", config.FormatTime(at), id)
	return err
}

// Count reports how many users exist.
func (r *UserRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// SetAvatar upserts the user's avatar.
func (r *UserRepository) SetAvatar(avatar *models.Avatar) error {
	_, err := r.db.Exec(`
		INSERT INTO avatars (user_id, type, data, background_color)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			type = excluded.type,
			data = excluded.data,
			background_color = excluded.background_color`,
		avatar.UserID, avatar.Type, avatar.Data, avatar.BackgroundColor)
	return err
}

// GetAvatar returns the user's avatar, or ErrNotFound.
func (r *UserRepository) GetAvatar(userID string) (*models.Avatar, error) {
	var a models.Avatar
	err := r.db.QueryRow(
		"SELECT user_id, type, data, background_color FROM avatars WHERE user_id = ?",
		userID).Scan(&a.UserID, &a.Type, &a.Data, &a.BackgroundColor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
