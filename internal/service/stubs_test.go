package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/token"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFieldsFn  func(context.Context, uint, map[string]interface{}) (*models.User, error)
	deactivateFn    func(context.Context, uint) error
	setAdminFn      func(context.Context, uint, bool) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *userRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, admin bool) error {
	return s.setAdminFn(ctx, id, admin)
}

// noopUserRepo returns a stub whose every method fails the test when called,
// so each test wires exactly what it expects.
func noopUserRepo(t *testing.T) *userRepoStub {
	t.Helper()
	fail := func(method string) {
		t.Errorf("unexpected call to userRepo.%s", method)
	}
	return &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) {
			fail("GetByID")
			return nil, nil
		},
		getByUsernameFn: func(context.Context, string) (*models.User, error) {
			fail("GetByUsername")
			return nil, nil
		},
		getByEmailFn: func(context.Context, string) (*models.User, error) {
			fail("GetByEmail")
			return nil, nil
		},
		listFn: func(context.Context, int, int) ([]models.User, error) {
			fail("List")
			return nil, nil
		},
		createFn: func(context.Context, *models.User) error {
			fail("Create")
			return nil
		},
		updateFieldsFn: func(context.Context, uint, map[string]interface{}) (*models.User, error) {
			fail("UpdateFields")
			return nil, nil
		},
		deactivateFn: func(context.Context, uint) error {
			fail("Deactivate")
			return nil
		},
		setAdminFn: func(context.Context, uint, bool) error {
			fail("SetAdmin")
			return nil
		},
	}
}

type postRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	getBySlugFn    func(context.Context, string) (*models.Post, error)
	listByAuthorFn func(context.Context, uint, int, int) ([]models.Post, error)
	listFn         func(context.Context, int, int) ([]models.Post, error)
	createFn       func(context.Context, *models.Post) error
	updateFieldsFn func(context.Context, uint, map[string]interface{}) (*models.Post, error)
	deleteFn       func(context.Context, uint) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, postSlug)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.Post, error) {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo(t *testing.T) *postRepoStub {
	t.Helper()
	fail := func(method string) {
		t.Errorf("unexpected call to postRepo.%s", method)
	}
	return &postRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Post, error) {
			fail("GetByID")
			return nil, nil
		},
		getBySlugFn: func(context.Context, string) (*models.Post, error) {
			fail("GetBySlug")
			return nil, nil
		},
		listByAuthorFn: func(context.Context, uint, int, int) ([]models.Post, error) {
			fail("ListByAuthor")
			return nil, nil
		},
		listFn: func(context.Context, int, int) ([]models.Post, error) {
			fail("List")
			return nil, nil
		},
		createFn: func(context.Context, *models.Post) error {
			fail("Create")
			return nil
		},
		updateFieldsFn: func(context.Context, uint, map[string]interface{}) (*models.Post, error) {
			fail("UpdateFields")
			return nil, nil
		},
		deleteFn: func(context.Context, uint) error {
			fail("Delete")
			return nil
		},
	}
}

type mailerStub struct {
	mu     sync.Mutex
	queued []notifications.Email
}

func (m *mailerStub) Enqueue(_ context.Context, email notifications.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, email)
	return nil
}

func (m *mailerStub) emails() []notifications.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifications.Email(nil), m.queued...)
}

func testTokens() *token.Service {
	return token.New("service-test-secret", time.Minute)
}

func assertAppErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
