package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
	"github.com/shopyardhq/shopyard-backend/pkg/security"
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	Username string
	FullName string
	Password string
}

// Service manages registered identities and their wishlists. Wishlist calls
// take an already-authenticated principal; credential checks happen either at
// login or through Verify.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (models.Account, error)
	Authenticate(ctx context.Context, username, password string) (models.Account, error)
	EnsureAdmin(ctx context.Context, password, fullName string) error
	GetWishlist(ctx context.Context, principal string) ([]int64, error)
	SetWishlist(ctx context.Context, principal string, itemIDs []int64) ([]int64, error)
}

type service struct {
	store    snapshot.Store
	password config.PasswordConfig
	now      func() time.Time
}

// ServiceParams groups dependencies for the accounts service.
type ServiceParams struct {
	Store          snapshot.Store
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

// NewService builds an accounts service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: params.Store, password: params.PasswordConfig, now: now}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	username := models.NormalizeUsername(input.Username)
	if username == "" {
		return models.Account{}, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if username == models.GuestUsername {
		return models.Account{}, pkgerrors.New(pkgerrors.CodeValidation, "username is reserved")
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fullName = username
	}
	if strings.TrimSpace(input.Password) == "" {
		return models.Account{}, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return models.Account{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var out models.Account
	err = s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		if _, exists := snap.Accounts[username]; exists {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("username %q is taken", username))
		}
		account := &models.Account{
			Username:       username,
			FullName:       fullName,
			IsAdmin:        username == models.AdminUsername,
			CredentialHash: hash,
			CreatedAt:      s.now().UTC(),
		}
		snap.Accounts[username] = account
		out = *account
		return nil
	})
	return out, err
}

func (s *service) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	var out models.Account
	err := s.store.View(ctx, func(snap *snapshot.Snapshot) error {
		ok, err := VerifyIn(snap, username, password)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
		}
		out = *snap.Accounts[models.NormalizeUsername(username)]
		return nil
	})
	return out, err
}

func (s *service) EnsureAdmin(ctx context.Context, password, fullName string) error {
	if strings.TrimSpace(password) == "" {
		return nil
	}
	_, err := s.Register(ctx, RegisterInput{
		Username: models.AdminUsername,
		FullName: fullName,
		Password: password,
	})
	if pkgerrors.Is(err, pkgerrors.CodeConflict) {
		return nil
	}
	return err
}

func (s *service) GetWishlist(ctx context.Context, principal string) ([]int64, error) {
	var out []int64
	err := s.store.View(ctx, func(snap *snapshot.Snapshot) error {
		account, err := requireAccount(snap, principal)
		if err != nil {
			return err
		}
		out = append([]int64(nil), account.Wishlist...)
		return nil
	})
	return out, err
}

func (s *service) SetWishlist(ctx context.Context, principal string, itemIDs []int64) ([]int64, error) {
	var out []int64
	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		account, err := requireAccount(snap, principal)
		if err != nil {
			return err
		}

		deduped := make([]int64, 0, len(itemIDs))
		seen := make(map[int64]struct{}, len(itemIDs))
		for _, id := range itemIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			if _, exists := snap.Items[id]; !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", id))
			}
			seen[id] = struct{}{}
			deduped = append(deduped, id)
		}

		account.Wishlist = deduped
		out = append([]int64(nil), deduped...)
		return nil
	})
	return out, err
}

func requireAccount(snap *snapshot.Snapshot, principal string) (*models.Account, error) {
	if models.IsGuest(principal) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wishlists require an account")
	}
	account, ok := snap.Accounts[models.NormalizeUsername(principal)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return account, nil
}

// VerifyIn is the opaque credential capability: it reports whether the secret
// matches the stored credential for the principal. Unknown or guest
// principals verify false without error.
func VerifyIn(snap *snapshot.Snapshot, principal, secret string) (bool, error) {
	if models.IsGuest(principal) || secret == "" {
		return false, nil
	}
	account, ok := snap.Accounts[models.NormalizeUsername(principal)]
	if !ok {
		return false, nil
	}
	ok, err := security.VerifyPassword(secret, account.CredentialHash)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify credential")
	}
	return ok, nil
}
