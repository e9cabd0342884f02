package todoitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.ToDoItem) (*models.ToDoItem, error) {

	query :=
		`INSERT INTO todo_items (title, is_completed, owner_user_id)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, item.Title, item.IsCompleted, item.OwnerUserID).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.ToDoItem, error) {
	return r.get(ctx, id, "")
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.ToDoItem, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *PostgresRepository) get(ctx context.Context, id int64, suffix string) (*models.ToDoItem, error) {
	b := selectItems().Where(squirrel.Eq{"id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	item := &models.ToDoItem{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.Title, &item.IsCompleted, &item.OwnerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Update overwrites title and completion only. The owner guard in the WHERE
// clause means a row that vanished or changed hands since it was read yields
// common.ErrConcurrentModification.
func (r *PostgresRepository) Update(ctx context.Context, item *models.ToDoItem) error {
	query :=
		`UPDATE todo_items SET title = $1, is_completed = $2
		 WHERE id = $3 AND owner_user_id = $4
		 `

	res, err := r.db.ExecContext(ctx, query, item.Title, item.IsCompleted, item.ID, item.OwnerUserID)
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return common.ErrConcurrentModification
		}
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64, ownerUserID string) error {
	query :=
		`DELETE FROM todo_items
		 WHERE id = $1 AND owner_user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerUserID)
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return common.ErrConcurrentModification
		}
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrConcurrentModification
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*models.ToDoItem, error) {
	return r.list(ctx, selectItems().Where(squirrel.Eq{"owner_user_id": ownerUserID}).OrderBy("id"))
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.ToDoItem, error) {
	return r.list(ctx, selectItems().OrderBy("id"))
}

func selectItems() squirrel.SelectBuilder {
	return squirrel.Select("id", "title", "is_completed", "owner_user_id").
		From("todo_items").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *PostgresRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]*models.ToDoItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.ToDoItem{}
	for rows.Next() {
		item := &models.ToDoItem{}
		if err := rows.Scan(&item.ID, &item.Title, &item.IsCompleted, &item.OwnerUserID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
