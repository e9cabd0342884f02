package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todoitems"
	usersrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// --- helpers ---

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit; the
// fake repositories ignore the handle they are bound to.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	nextID  int64

	createErr error
	getErr    error
	listErr   error
	creates   int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	f.byEmail[u.Email] = &cp
	u.ID = cp.ID
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.UserID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.User{}
	for _, u := range f.byEmail {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsersRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeItemsRepo struct {
	mu     sync.Mutex
	items  map[int64]*models.ToDoItem
	nextID int64

	createErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error

	gets    int
	updates int
	deletes int
}

func newFakeItemsRepo() *fakeItemsRepo {
	return &fakeItemsRepo{items: map[int64]*models.ToDoItem{}}
}

func (f *fakeItemsRepo) seed(title, owner string, done bool) *models.ToDoItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it := &models.ToDoItem{ID: f.nextID, Title: title, IsCompleted: done, OwnerUserID: owner}
	f.items[it.ID] = it
	cp := *it
	return &cp
}

func (f *fakeItemsRepo) snapshot(id int64) (*models.ToDoItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, false
	}
	cp := *it
	return &cp, true
}

func (f *fakeItemsRepo) Create(ctx context.Context, item *models.ToDoItem) (*models.ToDoItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	cp := *item
	cp.ID = f.nextID
	f.items[cp.ID] = &cp
	item.ID = cp.ID
	return item, nil
}

func (f *fakeItemsRepo) GetByID(ctx context.Context, id int64) (*models.ToDoItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItemsRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.ToDoItem, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeItemsRepo) Update(ctx context.Context, item *models.ToDoItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	it, ok := f.items[item.ID]
	if !ok || it.OwnerUserID != item.OwnerUserID {
		return common.ErrConcurrentModification
	}
	it.Title = item.Title
	it.IsCompleted = item.IsCompleted
	return nil
}

func (f *fakeItemsRepo) Delete(ctx context.Context, id int64, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	it, ok := f.items[id]
	if !ok || it.OwnerUserID != owner {
		return common.ErrConcurrentModification
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemsRepo) list(match func(*models.ToDoItem) bool) ([]*models.ToDoItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.ToDoItem{}
	for _, it := range f.items {
		if match(it) {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeItemsRepo) ListByOwner(ctx context.Context, owner string) ([]*models.ToDoItem, error) {
	return f.list(func(it *models.ToDoItem) bool { return it.OwnerUserID == owner })
}

func (f *fakeItemsRepo) ListAll(ctx context.Context) ([]*models.ToDoItem, error) {
	return f.list(func(*models.ToDoItem) bool { return true })
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeItemsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), i: newFakeItemsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) ToDoItems(db dbx.DBTX) todoitems.Repository   { return m.i }
