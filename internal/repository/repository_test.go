package repository

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// newTestDB opens a fresh in-memory sqlite database with the application
// schema applied. A single connection keeps every query on the same
// in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func fakeUser() *models.User {
	return &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: "$2a$10$abcdefghijklmnopqrstuv",
		IsActive: true,
	}
}

func fakePost(authorID uint) *models.Post {
	return &models.Post{
		AuthorID:         authorID,
		Slug:             gofakeit.Word(),
		Title:            gofakeit.Sentence(3),
		Text:             gofakeit.Paragraph(1, 3, 10, " "),
		ShortDescription: gofakeit.Sentence(5),
		PublishedAt:      gofakeit.Date(),
	}
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	return appErr.Code
}
