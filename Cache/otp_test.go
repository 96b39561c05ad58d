package Cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Models.OTPCode{}))
	return db
}

func TestDBOTPStore(t *testing.T) {
	ctx := context.Background()
	store := NewDBOTPStore(openDB(t))

	require.NoError(t, store.Save(ctx, "Owner@Example.com", "123456", time.Minute))
	assert.ErrorIs(t, store.Verify(ctx, "owner@example.com", "000000"), ErrOTPNotFound)
	assert.NoError(t, store.Verify(ctx, " owner@example.com ", "123456"))
	assert.ErrorIs(t, store.Verify(ctx, "owner@example.com", "123456"), ErrOTPNotFound)
}

func TestDBOTPStoreExpired(t *testing.T) {
	ctx := context.Background()
	store := NewDBOTPStore(openDB(t))

	require.NoError(t, store.Save(ctx, "owner@example.com", "123456", -time.Second))
	assert.ErrorIs(t, store.Verify(ctx, "owner@example.com", "123456"), ErrOTPNotFound)
}

func TestDBOTPStoreReplacesCode(t *testing.T) {
	ctx := context.Background()
	store := NewDBOTPStore(openDB(t))

	require.NoError(t, store.Save(ctx, "owner@example.com", "111111", time.Minute))
	require.NoError(t, store.Save(ctx, "owner@example.com", "222222", time.Minute))
	assert.ErrorIs(t, store.Verify(ctx, "owner@example.com", "111111"), ErrOTPNotFound)
	assert.NoError(t, store.Verify(ctx, "owner@example.com", "222222"))
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
}
