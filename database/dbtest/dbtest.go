// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var counter uint64

// Open returns a gorm handle on a fresh, migrated SQLite memory database.
// Each call gets its own named shared-cache database. The pool is capped at
// one connection so concurrent callers serialise the way row locks would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&counter, 1)
	dsn := fmt.Sprintf("file:tutordb%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), database.Options(nil))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
