package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/observability"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

const notificationSendBuffer = 32

// ConnectionOptions wraps metadata extracted during the websocket upgrade.
type ConnectionOptions struct {
	UserID        uint
	Role          string
	CorrelationID string
	Context       context.Context
}

// NotificationService persists notifications and pushes them to live
// websocket connections. It also exposes the owner-scoped read and delete
// operations.
type NotificationService interface {
	UserNotifier
	AdminNotifier
	List(ctx context.Context, userID uint, page, limit int) (dto.NotificationListData, utils.Pagination, error)
	MarkRead(ctx context.Context, userID uint, id *uint) error
	Delete(ctx context.Context, userID uint, id uint) error
	Clear(ctx context.Context, userID uint) error
	ServeConnection(conn *websocket.Conn, opts ConnectionOptions)
	Start(ctx context.Context)
}

type notificationService struct {
	repo        repository.NotificationRepository
	users       repository.UserRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *notificationHub
	nodeID      string
}

// notificationEvent is the cross-node fan-out envelope. Target is either a
// numeric user id or the admins group.
type notificationEvent struct {
	Source       string                `json:"source"`
	TargetUser   uint                  `json:"target_user,omitempty"`
	TargetAdmins bool                  `json:"target_admins,omitempty"`
	Notification dto.NotificationEvent `json:"notification"`
	SentAt       time.Time             `json:"sent_at"`
}

// notificationHub is the live-connection registry: account id to open
// connections, plus the shared admins group.
type notificationHub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*notificationClient]struct{}
	admins map[*notificationClient]struct{}
	log    zerolog.Logger
}

type notificationClient struct {
	conn    *websocket.Conn
	send    chan dto.NotificationEvent
	options ConnectionOptions
	service *notificationService
	closed  chan struct{}
	once    sync.Once
}

// NewNotificationService constructs the notification service and its hub.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		users:       users,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/kavyadav/adminhub-api/internal/service/notification"),
		sanitizer:   bluemonday.StrictPolicy(),
		hub: &notificationHub{
			byUser: make(map[uint]map[*notificationClient]struct{}),
			admins: make(map[*notificationClient]struct{}),
			log:    logger.With().Str("component", "notification_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// NotifyUser persists a notification for one account and pushes it to that
// account's live connections. Failures are logged and swallowed so callers
// never fail on notification bookkeeping.
func (s *notificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string) {
	ctx, span := s.tracer.Start(ctx, "notifications.notify_user", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(userID)),
		attribute.String("notification.type", notifType),
	))
	defer span.End()

	title, message, notifType = s.clean(title, message, notifType)

	model := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if err := s.repo.Create(ctx, &model); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to persist notification")
		return
	}

	event := dto.NotificationEvent{
		ID:        &model.ID,
		Title:     model.Title,
		Message:   model.Message,
		Type:      model.Type,
		CreatedAt: model.CreatedAt,
	}

	observability.NotificationsPublished().WithLabelValues(model.Type).Inc()
	s.hub.pushToUser(userID, event)
	s.publish(ctx, notificationEvent{
		Source:       s.nodeID,
		TargetUser:   userID,
		Notification: event,
		SentAt:       time.Now().UTC(),
	})
}

// NotifyAdmins inserts one row per admin-level account and broadcasts a
// single synthesized payload to the admins group. The broadcast payload has
// no row id because it stands for many rows at once.
func (s *notificationService) NotifyAdmins(ctx context.Context, title, message, notifType string) {
	ctx, span := s.tracer.Start(ctx, "notifications.notify_admins", trace.WithAttributes(
		attribute.String("notification.type", notifType),
	))
	defer span.End()

	title, message, notifType = s.clean(title, message, notifType)

	admins, err := s.users.ListByRoles(ctx, models.RoleAdmin, models.RoleSuperAdmin)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("failed to resolve admin accounts for broadcast")
		return
	}

	now := time.Now()
	if len(admins) > 0 {
		rows := make([]models.Notification, 0, len(admins))
		for _, admin := range admins {
			rows = append(rows, models.Notification{
				UserID:  admin.ID,
				Title:   title,
				Message: message,
				Type:    notifType,
			})
		}
		if err := s.repo.CreateBatch(ctx, rows); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Msg("failed to persist admin broadcast")
			return
		}
	}

	event := dto.NotificationEvent{
		Title:     title,
		Message:   message,
		Type:      notifType,
		CreatedAt: now,
	}

	observability.NotificationsPublished().WithLabelValues(notifType).Inc()
	s.hub.pushToAdmins(event)
	s.publish(ctx, notificationEvent{
		Source:       s.nodeID,
		TargetAdmins: true,
		Notification: event,
		SentAt:       time.Now().UTC(),
	})
}

func (s *notificationService) List(ctx context.Context, userID uint, page, limit int) (dto.NotificationListData, utils.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return dto.NotificationListData{}, utils.Pagination{}, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return dto.NotificationListData{}, utils.Pagination{}, err
	}

	data := dto.NotificationListData{
		Notifications: dto.NewNotificationResponses(items),
		UnreadCount:   unread,
	}
	return data, utils.NewPagination(page, limit, total), nil
}

// MarkRead marks one notification when id is set, otherwise all unread ones.
// Foreign ids are a silent no-op.
func (s *notificationService) MarkRead(ctx context.Context, userID uint, id *uint) error {
	if id == nil {
		return s.repo.MarkAllRead(ctx, userID)
	}
	return s.repo.MarkRead(ctx, userID, *id)
}

func (s *notificationService) Delete(ctx context.Context, userID uint, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *notificationService) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// ServeConnection registers the websocket connection in the hub and blocks
// until it closes. Admin-level roles also join the admins group.
func (s *notificationService) ServeConnection(conn *websocket.Conn, opts ConnectionOptions) {
	client := &notificationClient{
		conn:    conn,
		send:    make(chan dto.NotificationEvent, notificationSendBuffer),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)
	observability.RealtimeClients().Inc()

	go client.writer()
	client.reader()
}

func (s *notificationService) clean(title, message, notifType string) (string, string, string) {
	title = strings.TrimSpace(s.sanitizer.Sanitize(title))
	message = strings.TrimSpace(s.sanitizer.Sanitize(message))
	switch notifType {
	case models.NotificationInfo, models.NotificationSuccess, models.NotificationWarning, models.NotificationError:
	default:
		notifType = models.NotificationInfo
	}
	return title, message, notifType
}

func (s *notificationService) publish(ctx context.Context, event notificationEvent) {
	if (s.redis == nil || s.redisStream == "") && (s.nats == nil || s.natsSubject == "") {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal notification event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish notification event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish notification event to nats")
		}
	}
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "adminhub-notifications", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

func (s *notificationService) handleEvent(payload []byte) {
	var event notificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	if event.TargetAdmins {
		s.hub.pushToAdmins(event.Notification)
		return
	}
	if event.TargetUser != 0 {
		s.hub.pushToUser(event.TargetUser, event.Notification)
	}
}

func (h *notificationHub) register(client *notificationClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.options.UserID
	if _, exists := h.byUser[userID]; !exists {
		h.byUser[userID] = make(map[*notificationClient]struct{})
	}
	h.byUser[userID][client] = struct{}{}

	if models.IsAdmin(client.options.Role) {
		h.admins[client] = struct{}{}
	}

	h.log.Debug().Uint("user_id", userID).Str("role", client.options.Role).Msg("realtime client connected")
}

func (h *notificationHub) unregister(client *notificationClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.options.UserID
	if clients, ok := h.byUser[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byUser, userID)
		}
	}
	delete(h.admins, client)

	h.log.Debug().Uint("user_id", userID).Msg("realtime client disconnected")
}

func (h *notificationHub) pushToUser(userID uint, event dto.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.byUser[userID] {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Uint("user_id", userID).Msg("dropping notification for slow client")
		}
	}
}

func (h *notificationHub) pushToAdmins(event dto.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.admins {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Uint("user_id", client.options.UserID).Msg("dropping admin notification for slow client")
		}
	}
}

// connections reports the number of live connections for an account. Used by
// tests and the health probe.
func (h *notificationHub) connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// reader drains inbound frames until the peer disconnects. The channel is
// push-only so inbound payloads are discarded.
func (c *notificationClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("notification read loop ended")
			return
		}
	}
}

func (c *notificationClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("notification write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("notification ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *notificationClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		observability.RealtimeClients().Dec()
		_ = c.conn.Close()
	})
}
