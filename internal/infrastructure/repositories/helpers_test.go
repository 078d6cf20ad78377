package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		terms_accepted_at DATETIME,
		email_verified_at DATETIME,
		email_verification_code TEXT,
		email_verification_expires_at DATETIME,
		email_verification_sent_at DATETIME,
		notifications_enabled BOOLEAN NOT NULL DEFAULT 1,
		marketing_enabled BOOLEAN NOT NULL DEFAULT 1
	);`)
}

func createVehicleTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE vehicles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		vin TEXT,
		tp TEXT,
		orv TEXT,
		title TEXT,
		brand TEXT,
		model TEXT,
		snapshot TEXT,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX vehicles_user_vin_unique ON vehicles (user_id, vin) WHERE vin IS NOT NULL;`)
}

func createReminderTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		type TEXT NOT NULL,
		due_date DATE NOT NULL,
		note TEXT,
		is_done BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		email_enabled BOOLEAN NOT NULL DEFAULT 1,
		email_send_at DATE,
		email_sent_at DATETIME
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createVehicleTable(t, db)
	createReminderTable(t, db)
}
