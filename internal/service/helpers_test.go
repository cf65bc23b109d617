package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Student{}, &models.Notification{}, &models.ActivityLog{}, &models.Settings{}))
	return db
}

// stubRecorder captures audit entries synchronously so tests do not race the
// detached goroutine of the real recorder.
type stubRecorder struct {
	entries []ActivityEntry
}

func (s *stubRecorder) Record(entry ActivityEntry) {
	s.entries = append(s.entries, entry)
}

type stubUserNotifier struct {
	calls []string
}

func (s *stubUserNotifier) NotifyUser(_ context.Context, userID uint, title, _, _ string) {
	s.calls = append(s.calls, fmt.Sprintf("%d:%s", userID, title))
}

type stubAdminNotifier struct {
	titles []string
}

func (s *stubAdminNotifier) NotifyAdmins(_ context.Context, title, _, _ string) {
	s.titles = append(s.titles, title)
}
