package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

func setupNotificationService(t *testing.T) (*notificationService, repository.NotificationRepository, repository.UserRepository) {
	t.Helper()

	db := openTestDB(t, "notifications")
	repo := repository.NewNotificationRepository(db)
	users := repository.NewUserRepository(db)

	svc := NewNotificationService(repo, users, nil, "", nil, testLogger()).(*notificationService)
	return svc, repo, users
}

func seedUser(t *testing.T, users repository.UserRepository, email, role string) models.User {
	t.Helper()

	user := models.User{Name: email, Email: email, Password: "x", Role: role, Status: models.StatusActive}
	require.NoError(t, users.Create(context.Background(), &user))
	return user
}

func TestNotificationServiceNotifyUserPersists(t *testing.T) {
	svc, repo, users := setupNotificationService(t)
	user := seedUser(t, users, "user@example.com", models.RoleUser)

	svc.NotifyUser(context.Background(), user.ID, "Hello", "You have mail", models.NotificationSuccess)

	items, total, err := repo.ListByUser(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Hello", items[0].Title)
	require.Equal(t, models.NotificationSuccess, items[0].Type)
	require.False(t, items[0].Read)
}

func TestNotificationServiceNotifyUserSanitizes(t *testing.T) {
	svc, repo, users := setupNotificationService(t)
	user := seedUser(t, users, "user@example.com", models.RoleUser)

	svc.NotifyUser(context.Background(), user.ID, "<script>x</script>Hi", "<b>bold</b> text", "bogus")

	items, _, err := repo.ListByUser(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "Hi", items[0].Title)
	require.Equal(t, "bold text", items[0].Message)
	require.Equal(t, models.NotificationInfo, items[0].Type)
}

func TestNotificationServiceNotifyAdminsFanOut(t *testing.T) {
	svc, repo, users := setupNotificationService(t)
	admin := seedUser(t, users, "admin@example.com", models.RoleAdmin)
	super := seedUser(t, users, "super@example.com", models.RoleSuperAdmin)
	plain := seedUser(t, users, "user@example.com", models.RoleUser)

	svc.NotifyAdmins(context.Background(), "Heads up", "Something happened", models.NotificationWarning)

	for _, id := range []uint{admin.ID, super.ID} {
		_, total, err := repo.ListByUser(context.Background(), id, 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
	}

	_, total, err := repo.ListByUser(context.Background(), plain.ID, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestNotificationServiceMarkReadScoping(t *testing.T) {
	svc, repo, users := setupNotificationService(t)
	owner := seedUser(t, users, "owner@example.com", models.RoleUser)
	other := seedUser(t, users, "other@example.com", models.RoleUser)

	svc.NotifyUser(context.Background(), owner.ID, "One", "first", models.NotificationInfo)
	svc.NotifyUser(context.Background(), owner.ID, "Two", "second", models.NotificationInfo)

	items, _, err := repo.ListByUser(context.Background(), owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// A foreign caller marking the owner's notification is a silent no-op.
	require.NoError(t, svc.MarkRead(context.Background(), other.ID, &items[0].ID))
	unread, err := repo.CountUnread(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkRead(context.Background(), owner.ID, &items[0].ID))
	unread, err = repo.CountUnread(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	// Nil id marks everything unread.
	require.NoError(t, svc.MarkRead(context.Background(), owner.ID, nil))
	unread, err = repo.CountUnread(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationServiceDeleteAndClearScoping(t *testing.T) {
	svc, repo, users := setupNotificationService(t)
	owner := seedUser(t, users, "owner@example.com", models.RoleUser)
	other := seedUser(t, users, "other@example.com", models.RoleUser)

	svc.NotifyUser(context.Background(), owner.ID, "One", "first", models.NotificationInfo)
	svc.NotifyUser(context.Background(), other.ID, "Theirs", "keep", models.NotificationInfo)

	items, _, err := repo.ListByUser(context.Background(), owner.ID, 1, 10)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), other.ID, items[0].ID))
	_, total, err := repo.ListByUser(context.Background(), owner.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, items[0].ID))
	_, total, err = repo.ListByUser(context.Background(), owner.ID, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)

	require.NoError(t, svc.Clear(context.Background(), other.ID))
	_, total, err = repo.ListByUser(context.Background(), other.ID, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestNotificationServiceListIncludesUnreadCount(t *testing.T) {
	svc, _, users := setupNotificationService(t)
	owner := seedUser(t, users, "owner@example.com", models.RoleUser)

	svc.NotifyUser(context.Background(), owner.ID, "One", "first", models.NotificationInfo)
	svc.NotifyUser(context.Background(), owner.ID, "Two", "second", models.NotificationInfo)
	require.NoError(t, svc.MarkRead(context.Background(), owner.ID, nil))
	svc.NotifyUser(context.Background(), owner.ID, "Three", "third", models.NotificationInfo)

	data, pagination, err := svc.List(context.Background(), owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, data.Notifications, 3)
	require.Equal(t, int64(1), data.UnreadCount)
	require.Equal(t, int64(3), pagination.Total)
}

func TestNotificationHubRegistryCleanup(t *testing.T) {
	svc, _, _ := setupNotificationService(t)
	hub := svc.hub

	client := &notificationClient{
		send:    make(chan dto.NotificationEvent, 1),
		options: ConnectionOptions{UserID: 7, Role: models.RoleAdmin},
		service: svc,
		closed:  make(chan struct{}),
	}

	hub.register(client)
	require.Equal(t, 1, hub.connections(7))

	hub.pushToUser(7, dto.NotificationEvent{Title: "direct"})
	require.Equal(t, "direct", (<-client.send).Title)

	hub.pushToAdmins(dto.NotificationEvent{Title: "broadcast"})
	require.Equal(t, "broadcast", (<-client.send).Title)

	hub.unregister(client)
	require.Zero(t, hub.connections(7))

	// The per-user bucket is dropped once its last connection leaves.
	hub.mu.RLock()
	_, exists := hub.byUser[7]
	hub.mu.RUnlock()
	require.False(t, exists)

	// Pushing to a gone client does not panic or block.
	hub.pushToUser(7, dto.NotificationEvent{Title: "late"})
}

func TestNotificationHubSlowClientDoesNotBlock(t *testing.T) {
	svc, _, _ := setupNotificationService(t)
	hub := svc.hub

	client := &notificationClient{
		send:    make(chan dto.NotificationEvent, 1),
		options: ConnectionOptions{UserID: 9, Role: models.RoleUser},
		service: svc,
		closed:  make(chan struct{}),
	}
	hub.register(client)
	defer hub.unregister(client)

	hub.pushToUser(9, dto.NotificationEvent{Title: "first"})
	// Buffer is full now; the second push must drop instead of blocking.
	hub.pushToUser(9, dto.NotificationEvent{Title: "second"})

	require.Equal(t, "first", (<-client.send).Title)
	select {
	case event := <-client.send:
		t.Fatalf("expected drop, got %q", event.Title)
	default:
	}
}
