package database_test

import (
	"context"
	"testing"

	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/database/dbtest"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	created, err := database.SeedAdmin(ctx, db, "admin@example.com", "s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, created)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret!")))

	created, err = database.SeedAdmin(ctx, db, "admin@example.com", "s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedAdmin_SkipsWithoutCredentials(t *testing.T) {
	db := dbtest.Open(t)

	created, err := database.SeedAdmin(context.Background(), db, "", "", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, created)
}
