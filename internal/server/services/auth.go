// Package services contains server-side business logic. Every operation
// runs in its own unit of work (dbx.WithTx) and reports its outcome as a
// result.Result; store faults are logged and never leak to the caller.
package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor for stored password hashes.
const DefaultPasswordCost = 11

// bcrypt only reads the first 72 bytes of its input and rejects anything longer.
const maxPasswordBytes = 72

const (
	msgFirstNameRequired  = "First name is required."
	msgLastNameRequired   = "Last name is required."
	msgEmailInvalid       = "A valid email address is required."
	msgPasswordRequired   = "Password is required."
	msgEmailTaken         = "User with this email already exists."
	msgInvalidCredentials = "Invalid email or password."
	msgProcessingError    = "An error occurred while processing your request."
	msgRegistered         = "Registered Successfully"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest carries credentials for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService registers users, checks credentials and resolves bearer
// tokens back to stored users.
type AuthService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	verifier     auth.TokenVerifier
	log          logging.Logger
	passwordCost int
	newUserID    func() string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, verifier auth.TokenVerifier, log logging.Logger) *AuthService {
	return &AuthService{
		db:           db,
		repomanager:  m,
		verifier:     verifier,
		log:          log.With("service", "auth"),
		passwordCost: DefaultPasswordCost,
		newUserID:    func() string { return uuid.NewString() },
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// passwordInput is what both hashing and verification feed to bcrypt.
func passwordInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func isValidEmail(email string) bool {
	return !isBlank(email) && emailPattern.MatchString(email)
}

// Register validates the request field by field, stopping at the first
// failure, then creates the user. The duplicate check and the insert share
// one transaction; the unique index on email covers the race between them.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) result.Result[string] {
	switch {
	case isBlank(req.FirstName):
		return result.Fail[string](result.CodeFirstNameRequired, msgFirstNameRequired)
	case isBlank(req.LastName):
		return result.Fail[string](result.CodeLastNameRequired, msgLastNameRequired)
	case !isValidEmail(req.Email):
		return result.Fail[string](result.CodeEmailInvalid, msgEmailInvalid)
	case isBlank(req.Password):
		return result.Fail[string](result.CodePasswordRequired, msgPasswordRequired)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordInput(req.Password), s.passwordCost)
	if err != nil {
		s.log.Error(ctx, "hash password", "error", err)
		return result.Fail[string](result.CodeLoginFault, msgProcessingError)
	}

	user := &models.User{
		UserID:       s.newUserID(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, req.Email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		_, err = repo.Create(ctx, user)
		return err
	})

	switch {
	case err == nil:
		s.log.Info(ctx, "user registered", "user_id", user.UserID)
		return result.Result[string]{Success: true, Data: user.UserID, ErrorDescription: msgRegistered}
	case errors.Is(err, common.ErrorAlreadyExists), dbx.IsUniqueViolation(err):
		return result.Fail[string](result.CodeDuplicateEmail, msgEmailTaken)
	default:
		s.log.Error(ctx, "register failed", "code", result.CodeLoginFault, "error", err)
		return result.Fail[string](result.CodeLoginFault, msgProcessingError)
	}
}

// Login checks the credentials and returns the stored user id. Unknown email
// and wrong password share one description but keep distinct codes.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) result.Result[string] {
	if !isValidEmail(req.Email) {
		return result.Fail[string](result.CodeEmailInvalid, msgEmailInvalid)
	}
	if isBlank(req.Password) {
		return result.Fail[string](result.CodePasswordRequired, msgPasswordRequired)
	}

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).GetByEmail(ctx, req.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return result.Fail[string](result.CodeLoginEmailNotFound, msgInvalidCredentials)
		}
		s.log.Error(ctx, "login lookup failed", "code", result.CodeLoginFault, "error", err)
		return result.Fail[string](result.CodeLoginFault, msgProcessingError)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordInput(req.Password))
	switch {
	case err == nil:
		return result.OK(user.UserID)
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return result.Fail[string](result.CodeLoginPasswordMismatch, msgInvalidCredentials)
	default:
		s.log.Error(ctx, "login verify failed", "code", result.CodeLoginFault, "error", err)
		return result.Fail[string](result.CodeLoginFault, msgProcessingError)
	}
}

// ValidateToken resolves a bearer token to the stored user, or nil when the
// token does not verify or names no existing user.
func (s *AuthService) ValidateToken(ctx context.Context, token string) *models.User {
	userID, err := s.verifier.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "error", err)
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "token user lookup failed", "error", err)
		}
		return nil
	}

	return user
}
