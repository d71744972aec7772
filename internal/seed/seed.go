// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/internal/models"
)

// Options controls seeding behavior.
type Options struct {
	// SkipBcrypt stores a plaintext marker password instead of hashing,
	// which makes large seeds much faster. Dev only.
	SkipBcrypt bool
	// MaxDays spreads generated publication dates over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Every seeded account
// uses the password "Password123". Optional override functions may modify
// the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:        fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:           gofakeit.Email(),
		IsActive:        true,
		IsVerifiedEmail: true,
	}

	if f.opts.SkipBcrypt {
		user.Password = "Password123"
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the author without persisting it.
// Publication dates are spread over the configured window so listings look
// lived-in.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := gofakeit.Sentence(f.rng.Intn(5) + 3)
	if len(title) > 100 {
		title = title[:100]
	}

	shortDescription := gofakeit.Sentence(8)
	if len(shortDescription) > 200 {
		shortDescription = shortDescription[:200]
	}

	daysBack := f.rng.Intn(f.opts.MaxDays)
	hoursBack := f.rng.Intn(24)
	publishedAt := time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	post := &models.Post{
		AuthorID:         author.ID,
		Slug:             slug.Make(title),
		Title:            title,
		Text:             gofakeit.Paragraph(2, 4, 8, "\n\n"),
		ShortDescription: shortDescription,
		PublishedAt:      publishedAt,
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// Seeder populates the database with a full demo dataset.
type Seeder struct {
	factory *Factory
	db      *gorm.DB
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{factory: NewFactory(db, opts), db: db}
}

// ClearAll removes all seeded rows. Posts go first because of the author
// foreign key.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("failed to clear posts: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

// SeedUsers creates numUsers accounts: one superuser, a couple of admins,
// and the rest regular writers.
func (s *Seeder) SeedUsers(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)

	root, err := s.factory.CreateUser(func(u *models.User) {
		u.Username = "root"
		u.Email = "root@example.com"
		u.IsSuperuser = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}
	users = append(users, root)

	for i := 1; i < numUsers; i++ {
		isAdmin := i <= 2
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.IsAdmin = isAdmin
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, user)
	}

	log.Printf("✓ Created %d users", len(users))
	return users, nil
}

// SeedPosts spreads numPosts across the given authors, weighted toward the
// front of the slice so a few prolific writers emerge.
func (s *Seeder) SeedPosts(authors []*models.User, numPosts int) error {
	if len(authors) == 0 {
		return fmt.Errorf("no authors to seed posts for")
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := authors[s.factory.rng.Intn(len(authors))]
		if s.factory.rng.Intn(3) == 0 {
			author = authors[s.factory.rng.Intn((len(authors)/4)+1)]
		}
		posts = append(posts, s.factory.BuildPost(author))
	}

	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ Created %d posts", len(posts))
	return nil
}
