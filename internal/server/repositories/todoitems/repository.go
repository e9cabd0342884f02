package todoitems

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.ToDoItem) (*models.ToDoItem, error)
	GetByID(ctx context.Context, id int64) (*models.ToDoItem, error)
	// GetByIDForUpdate is GetByID that also locks the row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.ToDoItem, error)
	Update(ctx context.Context, item *models.ToDoItem) error
	Delete(ctx context.Context, id int64, ownerUserID string) error
	ListByOwner(ctx context.Context, ownerUserID string) ([]*models.ToDoItem, error)
	ListAll(ctx context.Context) ([]*models.ToDoItem, error)
}
