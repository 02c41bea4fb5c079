// Package account is the account coordinator: registration, login, profile
// changes, and the identity capability other features resolve callers with.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
	"github.com/oksasatya/go-ddd-event-hub/pkg/mailer/templates"
)

// Notifier delivers account emails. Delivery is best effort.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// TokenSigner issues bearer tokens for authenticated accounts.
type TokenSigner interface {
	Sign(claims auth.TokenClaims) (string, error)
}

// CapabilityCache is told when an account's identity may have changed.
type CapabilityCache interface {
	Invalidate(ctx context.Context, accountID string)
}

type Service struct {
	Repo     repo.AccountRepository
	Tokens   TokenSigner
	Notifier Notifier
	Cache    CapabilityCache
	Logger   *logrus.Logger
	HashCost int

	now   func() time.Time
	newID func() string

	dummyHash string
}

// fallbackHash is a well-formed bcrypt hash of no account's password.
const fallbackHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// NewAccount is the input of account creation.
type NewAccount struct {
	Email    string
	Username string
	Password string
	Role     entity.Role
}

func NewService(repo repo.AccountRepository, tokens TokenSigner, notifier Notifier, logger *logrus.Logger, hashCost int) *Service {
	s := &Service{
		Repo:     repo,
		Tokens:   tokens,
		Notifier: notifier,
		Logger:   logger,
		HashCost: hashCost,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	// Hashed up front so the first unknown-email login costs the same as the rest.
	if h, err := helpers.HashPassword(uuid.NewString(), hashCost); err == nil {
		s.dummyHash = h
	}
	return s
}

// CreateAccount hashes the password, assigns a fresh id, and stores the
// account. A duplicate email fails with apperr.ErrConflict.
func (s *Service) CreateAccount(ctx context.Context, in NewAccount) (entity.Account, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return entity.Account{}, apperr.Validationf("email and password are required")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleMember
	}
	if !role.Valid() {
		return entity.Account{}, apperr.Validationf("unknown role %q", role)
	}
	if err := checkPassword(in.Password); err != nil {
		return entity.Account{}, err
	}

	// Cheap early exit; the directory still enforces uniqueness on insert.
	if _, found, err := s.Repo.FindByEmail(ctx, email); err != nil {
		return entity.Account{}, apperr.Internal(err)
	} else if found {
		return entity.Account{}, apperr.Conflictf("email %q already registered", email)
	}

	hash, err := helpers.HashPassword(in.Password, s.HashCost)
	if err != nil {
		return entity.Account{}, apperr.Internal(err)
	}
	created, err := s.Repo.Create(ctx, entity.Account{
		ID:           s.nextID(),
		Email:        email,
		Username:     in.Username,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.clock(),
	})
	if err != nil {
		return entity.Account{}, apperr.Internal(err)
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": created.ID, "role": created.Role}).Info("account created")
	}
	s.sendWelcome(ctx, created)
	return created, nil
}

// Register is the sign-up path. Anonymous callers and members may only
// create member accounts; creating an admin requires an admin actor.
// actorID is empty for anonymous callers.
func (s *Service) Register(ctx context.Context, actorID string, in NewAccount) (entity.Account, error) {
	if in.Role == "" {
		in.Role = entity.RoleMember
	}
	if in.Role == entity.RoleAdmin {
		if actorID == "" {
			return entity.Account{}, apperr.Forbiddenf("only admins may create admin accounts")
		}
		actor, err := s.requireActor(ctx, actorID)
		if err != nil {
			return entity.Account{}, err
		}
		if !actor.IsAdmin() {
			return entity.Account{}, apperr.Forbiddenf("only admins may create admin accounts")
		}
	}
	return s.CreateAccount(ctx, in)
}

// Login checks credentials and returns a signed token. An unknown email and a
// wrong password fail identically with apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acc, found, err := s.Repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !found {
		// keep timing close to the wrong-password path
		helpers.CompareHashAndPassword(s.fakeHash(), password)
		return "", apperr.ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(acc.PasswordHash, password) {
		return "", apperr.ErrInvalidCredentials
	}

	token, err := s.Tokens.Sign(auth.TokenClaims{SubjectID: acc.ID, Role: acc.Role})
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", acc.ID).Error("sign token failed")
		}
		return "", apperr.Internal(err)
	}
	return token, nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (entity.Account, bool, error) {
	a, found, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entity.Account{}, false, apperr.Internal(err)
	}
	return a, found, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]entity.Account, error) {
	items, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// UpdateAccount applies p to the stored account. The password is rehashed
// only when p carries one.
func (s *Service) UpdateAccount(ctx context.Context, id string, p Patch) (entity.Account, error) {
	cur, found, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entity.Account{}, apperr.Internal(err)
	}
	if !found {
		return entity.Account{}, apperr.NotFoundf("account %s", id)
	}
	if p.Role != nil && !p.Role.Valid() {
		return entity.Account{}, apperr.Validationf("unknown role %q", *p.Role)
	}
	if p.Email != nil && normalizeEmail(*p.Email) == "" {
		return entity.Account{}, apperr.Validationf("email cannot be empty")
	}

	var hash string
	if p.Password != nil {
		if *p.Password == "" {
			return entity.Account{}, apperr.Validationf("password cannot be empty")
		}
		if err := checkPassword(*p.Password); err != nil {
			return entity.Account{}, err
		}
		if hash, err = helpers.HashPassword(*p.Password, s.HashCost); err != nil {
			return entity.Account{}, apperr.Internal(err)
		}
	}

	updated, err := s.Repo.Update(ctx, p.Merge(cur, hash), id)
	if err != nil {
		return entity.Account{}, apperr.Internal(err)
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// UpdateAccountAs is UpdateAccount on behalf of actorID: only the account
// itself or an admin may change it, and only an admin may change a role.
func (s *Service) UpdateAccountAs(ctx context.Context, actorID, id string, p Patch) (entity.Account, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return entity.Account{}, err
	}
	if !actor.IsAdmin() && actor.SubjectID != id {
		return entity.Account{}, apperr.Forbiddenf("cannot modify another account")
	}
	if p.Role != nil && !actor.IsAdmin() {
		return entity.Account{}, apperr.Forbiddenf("only admins may change roles")
	}
	return s.UpdateAccount(ctx, id, p)
}

// DeleteAccount removes the account and reports whether it existed.
// Favorites that reference it are left in place.
func (s *Service) DeleteAccount(ctx context.Context, id string) (bool, error) {
	existed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	s.invalidate(ctx, id)
	return existed, nil
}

// DeleteAccountAs is DeleteAccount restricted to admin actors.
func (s *Service) DeleteAccountAs(ctx context.Context, actorID, id string) (bool, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return false, err
	}
	if !actor.IsAdmin() {
		return false, apperr.Forbiddenf("only admins may delete accounts")
	}
	return s.DeleteAccount(ctx, id)
}

// ResolveIdentity exposes the {id, role} view of an account to other features.
func (s *Service) ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error) {
	a, found, err := s.GetAccount(ctx, id)
	if err != nil || !found {
		return capability.Identity{}, false, err
	}
	return capability.FromAccount(a), true, nil
}

func checkPassword(pw string) error {
	if len(pw) > helpers.MaxPasswordBytes {
		return apperr.Validationf("password must be at most %d bytes", helpers.MaxPasswordBytes)
	}
	return nil
}

func (s *Service) requireActor(ctx context.Context, actorID string) (capability.Identity, error) {
	actor, found, err := s.ResolveIdentity(ctx, actorID)
	if err != nil {
		return capability.Identity{}, err
	}
	if !found {
		return capability.Identity{}, apperr.ErrUnauthenticated
	}
	return actor, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
}

func (s *Service) sendWelcome(ctx context.Context, a entity.Account) {
	if s.Notifier == nil {
		return
	}
	subject, body, _, err := templates.Render(templates.Welcome, templates.NewEmailData(a.Username, a.Email, templates.WithTime(a.CreatedAt)))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("render welcome email failed")
		}
		return
	}
	if err := s.Notifier.SendEmail(ctx, a.Email, subject, body); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", a.ID).Warn("welcome email failed")
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Service) nextID() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func (s *Service) fakeHash() string {
	if s.dummyHash != "" {
		return s.dummyHash
	}
	return fallbackHash
}
