package database

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options returns the gorm configuration shared by production and tests.
func Options(log *zap.Logger) *gorm.Config {
	cfg := &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	}
	if log != nil {
		cfg.Logger = gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	} else {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return cfg
}

// Connect opens the one connection pool the whole process shares.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Options(log))
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TutorProfile{},
		&models.Assignment{},
		&models.Payment{},
		&models.Payout{},
	)
	return errors.Wrap(err, "migrate database")
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string, cost int) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check for admin user")
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return false, errors.Wrap(err, "hash admin password")
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, errors.Wrap(err, "seed admin user")
	}
	return true, nil
}
