package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
)

const msgUsersFailed = "An error occurred while retrieving users."

// UserService serves the administrative user listing.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, log: log.With("service", "users")}
}

// ListAllUsers returns every user. Failures carry no numeric code.
func (s *UserService) ListAllUsers(ctx context.Context) result.Result[[]*models.User] {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		s.log.Error(ctx, "list users failed", "error", err)
		return result.Fail[[]*models.User](result.CodeOK, msgUsersFailed)
	}
	if users == nil {
		users = []*models.User{}
	}
	return result.OK(users)
}
