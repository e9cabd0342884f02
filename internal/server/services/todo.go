package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
)

const (
	msgSuccess          = "Success"
	msgCallerRequired   = "User ID cannot be null or empty."
	msgListFailed       = "Failed to retrieve ToDo items."
	msgGetFailed        = "Failed to retrieve ToDo item."
	msgCreateFailed     = "Failed to create ToDo item."
	msgIDMismatch       = "ID mismatch. Cannot update ToDo item."
	msgItemNotFound     = "ToDo item not found."
	msgUpdateNotOwner   = "User ID does not match. Cannot update ToDo item."
	msgConcurrentUpdate = "Concurrency error during update."
	msgUpdateFailed     = "Failed to update ToDo item."
	msgDeleteNotOwner   = "User ID does not match. Cannot delete ToDo item."
	msgDeleted          = "Deleted Successfully"
	msgDeleteFailed     = "Failed to delete ToDo item."
)

// ToDoService implements item CRUD. Reads by id are unscoped; update and
// delete check ownership inside the same transaction that mutates the row.
type ToDoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewToDoService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ToDoService {
	return &ToDoService{db: db, repomanager: m, log: log.With("service", "todo")}
}

func (s *ToDoService) fault(ctx context.Context, op string, code result.Code, err error) {
	s.log.Error(ctx, op+" failed", "code", code, "error", err)
}

// ListAll returns every item regardless of owner.
func (s *ToDoService) ListAll(ctx context.Context) result.Result[[]*models.ToDoItem] {
	var items []*models.ToDoItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		items, err = s.repomanager.ToDoItems(tx).ListAll(ctx)
		return err
	})
	if err != nil {
		s.fault(ctx, "list all", result.CodeListFault, err)
		return result.Fail[[]*models.ToDoItem](result.CodeListFault, msgListFailed)
	}
	return result.OK(nonNil(items))
}

// ListByOwner returns the caller's items. No items is a success.
func (s *ToDoService) ListByOwner(ctx context.Context, callerUserID string) result.Result[[]*models.ToDoItem] {
	if isBlank(callerUserID) {
		return result.Fail[[]*models.ToDoItem](result.CodeBadRequest, msgCallerRequired)
	}

	var items []*models.ToDoItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		items, err = s.repomanager.ToDoItems(tx).ListByOwner(ctx, callerUserID)
		return err
	})
	if err != nil {
		s.fault(ctx, "list by owner", result.CodeListFault, err)
		return result.Fail[[]*models.ToDoItem](result.CodeListFault, msgListFailed)
	}
	return result.OK(nonNil(items))
}

func nonNil(items []*models.ToDoItem) []*models.ToDoItem {
	if items == nil {
		return []*models.ToDoItem{}
	}
	return items
}

// GetByID looks an item up without checking who owns it.
func (s *ToDoService) GetByID(ctx context.Context, id int64) result.Result[*models.ToDoItem] {
	var item *models.ToDoItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		item, err = s.repomanager.ToDoItems(tx).GetByID(ctx, id)
		return err
	})
	switch {
	case err == nil:
		return result.OK(item)
	case errors.Is(err, common.ErrorNotFound):
		return result.Fail[*models.ToDoItem](result.CodeItemNotFound, fmt.Sprintf("ToDo item with ID %d not found.", id))
	default:
		s.fault(ctx, "get by id", result.CodeGetFault, err)
		return result.Fail[*models.ToDoItem](result.CodeGetFault, msgGetFailed)
	}
}

// Create stores the item as given, owner included, and returns it with the
// assigned id. Identical payloads produce distinct rows.
func (s *ToDoService) Create(ctx context.Context, item *models.ToDoItem) result.Result[*models.ToDoItem] {
	if item == nil {
		return result.Fail[*models.ToDoItem](result.CodeCreateFault, msgCreateFailed)
	}

	toCreate := &models.ToDoItem{Title: item.Title, IsCompleted: item.IsCompleted, OwnerUserID: item.OwnerUserID}

	var created *models.ToDoItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.ToDoItems(tx).Create(ctx, toCreate)
		return err
	})
	if err != nil {
		s.fault(ctx, "create", result.CodeCreateFault, err)
		return result.Fail[*models.ToDoItem](result.CodeCreateFault, msgCreateFailed)
	}
	return result.OK(created)
}

// Update overwrites title and completion of item id on behalf of the caller.
// The path id must equal the payload id; id and owner never change.
func (s *ToDoService) Update(ctx context.Context, callerUserID string, id int64, item *models.ToDoItem) result.Result[*models.ToDoItem] {
	if item == nil || item.ID != id {
		return result.Fail[*models.ToDoItem](result.CodeIDMismatch, msgIDMismatch)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ToDoItems(tx)

		existing, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing.OwnerUserID != callerUserID {
			return common.ErrorOwnerMismatch
		}

		existing.Title = item.Title
		existing.IsCompleted = item.IsCompleted
		return repo.Update(ctx, existing)
	})

	switch {
	case err == nil:
		return result.Done[*models.ToDoItem](msgSuccess)
	case errors.Is(err, common.ErrorNotFound):
		return result.Fail[*models.ToDoItem](result.CodeItemNotFound, msgItemNotFound)
	case errors.Is(err, common.ErrorOwnerMismatch):
		return result.Fail[*models.ToDoItem](result.CodeUpdateOwnerMismatch, msgUpdateNotOwner)
	case errors.Is(err, common.ErrConcurrentModification), dbx.IsSerializationFailure(err):
		s.log.Warn(ctx, "update conflict", "code", result.CodeConcurrentUpdate, "item_id", id, "error", err)
		return result.Fail[*models.ToDoItem](result.CodeConcurrentUpdate, msgConcurrentUpdate)
	default:
		s.fault(ctx, "update", result.CodeUpdateFault, err)
		return result.Fail[*models.ToDoItem](result.CodeUpdateFault, msgUpdateFailed)
	}
}

// DeleteByOwner removes item id if the caller owns it.
func (s *ToDoService) DeleteByOwner(ctx context.Context, callerUserID string, id int64) result.Result[*models.ToDoItem] {
	if isBlank(callerUserID) {
		return result.Fail[*models.ToDoItem](result.CodeBadRequest, msgCallerRequired)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ToDoItems(tx)

		existing, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing.OwnerUserID != callerUserID {
			return common.ErrorOwnerMismatch
		}

		return repo.Delete(ctx, id, callerUserID)
	})

	switch {
	case err == nil:
		return result.Done[*models.ToDoItem](msgDeleted)
	case errors.Is(err, common.ErrorNotFound):
		return result.Fail[*models.ToDoItem](result.CodeDeleteNotFound, msgItemNotFound)
	case errors.Is(err, common.ErrorOwnerMismatch):
		return result.Fail[*models.ToDoItem](result.CodeDeleteOwnerMismatch, msgDeleteNotOwner)
	default:
		s.fault(ctx, "delete", result.CodeDeleteFault, err)
		return result.Fail[*models.ToDoItem](result.CodeDeleteFault, msgDeleteFailed)
	}
}
