package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

// ModuleRepository handles persistence of course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID returns a module or sql.ErrNoRows.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	const query = `SELECT id, course_id, title, order_index, created_at FROM modules WHERE id = $1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find module: %w", err)
	}
	return &module, nil
}

// Create inserts a module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO modules (id, course_id, title, order_index, created_at) VALUES (:id, :course_id, :title, :order_index, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update persists title and order.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	const query = `UPDATE modules SET title = :title, order_index = :order_index WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, module)
	if err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return expectAffected(res, "update module")
}

// Delete removes a module and, by cascade, its lessons.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return expectAffected(res, "delete module")
}
