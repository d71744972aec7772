package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/token"
	"inkwell/internal/validation"
)

// Mailer queues outbound email. Delivery is asynchronous; a queue failure
// never fails the operation that triggered the mail.
type Mailer interface {
	Enqueue(ctx context.Context, email notifications.Email) error
}

type UserService struct {
	userRepo repository.UserRepository
	tokens   *token.Service
	mailer   Mailer
	baseURL  string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

func NewUserService(userRepo repository.UserRepository, tokens *token.Service, mailer Mailer, baseURL string) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens, mailer: mailer, baseURL: baseURL}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User with this username already exists")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, user)

	return user, nil
}

// sendVerificationEmail is fire-and-forget: registration already succeeded,
// so a mail failure is logged and the user can request a new link later.
func (s *UserService) sendVerificationEmail(ctx context.Context, user *models.User) {
	verifyToken, err := s.tokens.IssueVerification(user)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to issue verification token",
			"user_id", user.ID, "error", err)
		return
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.baseURL, verifyToken)
	email := notifications.Email{
		To:      user.Email,
		Subject: "Verify your Inkwell account",
		Body: fmt.Sprintf(
			"Hi %s,\n\nWelcome to Inkwell. Please confirm your email address by opening the link below:\n\n%s\n\nIf you did not create this account, you can ignore this message.\n",
			user.Username, link,
		),
	}
	if err := s.mailer.Enqueue(ctx, email); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to queue verification email",
			"user_id", user.ID, "error", err)
	}
}

// Login checks credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		// Run the hash comparison anyway so a missing user costs the same
		// time as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return "", models.NewUnauthorizedError("Incorrect username or password")
	}
	if !user.IsActive {
		return "", models.NewUnauthorizedError("Inactive user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", models.NewUnauthorizedError("Incorrect username or password")
	}

	accessToken, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return accessToken, nil
}

// VerifyEmail marks the account named by the token as verified. Verifying an
// already-verified account is a no-op.
func (s *UserService) VerifyEmail(ctx context.Context, tokenString string) (*models.User, error) {
	username, err := s.tokens.ParseVerification(tokenString)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired verification token")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if user.IsVerifiedEmail {
		return user, nil
	}

	return s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"is_verified_email": true,
	})
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, normalizeLimit(limit), normalizeOffset(offset))
}

// UpdateUser applies a partial update to the target account on behalf of
// actor. Provided fields are validated; nil fields stay untouched. An update
// carrying no fields at all is rejected.
func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, targetID uint, in UpdateUserInput) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, target) {
		return nil, models.NewForbiddenError("You do not have permission to manage this user")
	}

	fields := map[string]interface{}{}

	if in.Username != nil && *in.Username != target.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.userRepo.GetByUsername(ctx, *in.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("User with this username already exists")
		}
		fields["username"] = *in.Username
	}
	if in.Email != nil && *in.Email != target.Email {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.userRepo.GetByEmail(ctx, *in.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("User with this email already exists")
		}
		// A new address starts unverified.
		fields["email"] = *in.Email
		fields["is_verified_email"] = false
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		fields["password"] = string(hash)
	}

	if in.Username == nil && in.Email == nil && in.Password == nil {
		return nil, models.NewValidationError("No fields to update")
	}
	if len(fields) == 0 {
		// Every provided value matches the current state.
		return target, nil
	}

	updated, err := s.userRepo.UpdateFields(ctx, targetID, fields)
	if err != nil {
		return nil, err
	}
	if _, ok := fields["email"]; ok {
		s.sendVerificationEmail(ctx, updated)
	}
	return updated, nil
}

// DeleteUser deactivates the target account on behalf of actor. The row is
// kept so authored posts stay attributable.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, targetID uint) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !CanManage(actor, target) {
		return models.NewForbiddenError("You do not have permission to manage this user")
	}
	return s.userRepo.Deactivate(ctx, targetID)
}

// GrantAdmin promotes the target to admin. Only superusers may manage
// privileges, and CanManage still applies on top: a superuser can neither
// touch another superuser nor their own account.
func (s *UserService) GrantAdmin(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	return s.setAdmin(ctx, actor, targetID, true)
}

// RevokeAdmin demotes the target from admin under the same rules as GrantAdmin.
func (s *UserService) RevokeAdmin(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	return s.setAdmin(ctx, actor, targetID, false)
}

func (s *UserService) setAdmin(ctx context.Context, actor *models.User, targetID uint, admin bool) (*models.User, error) {
	if !actor.IsSuperuser {
		return nil, models.NewForbiddenError("Only superusers can manage admin privileges")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	// Superuser privileges are not managed through this flow at all: both
	// granting admin to a superuser and revoking it are redundant-state
	// conflicts, not authorization failures.
	if target.IsSuperuser && target.ID != actor.ID {
		if admin {
			return nil, models.NewConflictError("User is a superuser and already holds admin privileges")
		}
		return nil, models.NewConflictError("Cannot revoke admin privileges from a superuser")
	}
	if !CanManage(actor, target) {
		return nil, models.NewForbiddenError("You do not have permission to manage this user")
	}

	if err := s.userRepo.SetAdmin(ctx, targetID, admin); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
