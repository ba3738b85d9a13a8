package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
)

// SessionStore is the allow-list of issued token ids. A token whose id is
// missing has been logged out.
type SessionStore interface {
	Save(ctx context.Context, tokenID string, userID int, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
}

type AuthService struct {
	store    repository.Store
	sessions SessionStore
	users    *UserService
}

func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (*models.AuthPayload, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByEmail(ctx, tenantID, input.Email)
	if models.KindOf(err) == models.KindNotFound {
		return nil, models.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, models.Unauthenticated("invalid email or password")
	}
	if !user.Active() {
		return nil, models.Forbidden("account is disabled")
	}
	return s.issue(ctx, user)
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input *models.NewUser) (*models.AuthPayload, error) {
	user, err := s.users.CreateCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.AuthPayload, error) {
	token, tokenID, expiresAt, err := utils.JwtGenerate(user.ID, user.TenantId, user.Name, user.RoleSlugs())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, tokenID, user.ID, time.Until(expiresAt)); err != nil {
		return nil, err
	}
	return &models.AuthPayload{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the token the request was made with.
func (s *AuthService) Logout(ctx context.Context) (bool, error) {
	tokenID, ok := appctx.GetString(ctx, appctx.ContextKeyTokenId)
	if !ok || tokenID == "" {
		return false, models.Unauthenticated("not signed in")
	}
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	userID, ok := userFromContext(ctx)
	if !ok {
		return nil, models.Unauthenticated("not signed in")
	}
	return s.store.Users().GetByID(ctx, tenantID, userID)
}

// Authenticate checks a bearer token against the signing key, the request
// tenant and the session allow-list, then reloads the user so name and roles
// reflect the stored account rather than the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.JwtCustomClaim, error) {
	claims, err := utils.JwtValidate(token)
	if err != nil {
		return nil, models.Unauthenticated("invalid or expired token")
	}
	if tenantID, ok := appctx.TenantId(ctx); ok && claims.TenantId != tenantID {
		return nil, models.Unauthenticated("token was issued for another store")
	}
	ok, err := s.sessions.Exists(ctx, claims.Id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.Unauthenticated("session has been logged out")
	}

	user, err := s.store.Users().GetByID(ctx, claims.TenantId, claims.UserId)
	if models.KindOf(err) == models.KindNotFound {
		return nil, models.Unauthenticated("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, models.Unauthenticated("account is disabled")
	}
	claims.Name = user.Name
	claims.Roles = user.RoleSlugs()
	return claims, nil
}

// MemorySessions is the in-process SessionStore used when Redis is not
// connected.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: map[string]time.Time{}, now: time.Now}
}

func (m *MemorySessions) Save(ctx context.Context, tokenID string, userID int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[tokenID] = m.now().Add(ttl)
	return nil
}

func (m *MemorySessions) Exists(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.sessions[tokenID]
	if ok && m.now().After(expiresAt) {
		delete(m.sessions, tokenID)
		return false, nil
	}
	return ok, nil
}

func (m *MemorySessions) Delete(ctx context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenID)
	return nil
}
