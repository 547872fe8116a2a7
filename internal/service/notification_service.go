package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

const (
	notificationBufferSize = 16
	fanOutBatchSize        = 500

	triggerCourseCreated    = "course_created"
	triggerEducatorAssigned = "educator_assigned"
)

// NotificationService persists notifications and streams them to connected users.
type NotificationService interface {
	NotifyCourseCreated(ctx context.Context, course models.Course) (int, error)
	NotifyEducatorAssigned(ctx context.Context, educatorID uint, course models.Course) error
	List(ctx context.Context, userID uint, query dto.NotificationListQuery) ([]dto.NotificationResponse, error)
	Subscribe(userID uint, transport string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo         repository.NotificationRepository
	users        repository.UserRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	broker       *notificationBroker
	nodeID       string
	batchSize    int
}

type notificationEvent struct {
	Source        string                     `json:"source"`
	Notifications []dto.NotificationResponse `json:"notifications"`
	SentAt        time.Time                  `json:"sent_at"`
}

type notificationBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.NotificationResponse]struct{}
}

// NewNotificationService constructs a notification service. The redis client
// and nats connection are optional relays for multi-instance deployments.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:         repo,
		users:        users,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/coursehub-api/internal/service/notification"),
		sanitizer:    bluemonday.StrictPolicy(),
		broker: &notificationBroker{
			subscribers: make(map[uint]map[chan dto.NotificationResponse]struct{}),
		},
		nodeID:    uuid.NewString(),
		batchSize: fanOutBatchSize,
	}
}

func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// NotifyCourseCreated tells every learner about the new course. Learners are
// read and inserted batch by batch so the whole population is never held in memory.
func (s *notificationService) NotifyCourseCreated(ctx context.Context, course models.Course) (int, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.course_created", trace.WithAttributes(
		attribute.Int("course.id", int(course.ID)),
	))
	defer span.End()

	message := s.clean(fmt.Sprintf("New course alert: \"%s\" is now available in %s!", course.Title, models.CategoryLabel(course.Category)))

	total := 0
	err := s.users.FindLearnersInBatches(ctx, s.batchSize, func(learners []models.User) error {
		batch := make([]models.Notification, 0, len(learners))
		for _, learner := range learners {
			batch = append(batch, models.Notification{
				UserID:  learner.ID,
				Message: message,
				Type:    models.NotificationTypeInfo,
			})
		}

		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		total += len(batch)
		s.deliver(ctx, batch)
		return nil
	})

	span.SetAttributes(attribute.Int("notifications.created", total))
	observability.NotificationsCreated().WithLabelValues(triggerCourseCreated).Add(float64(total))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fan_out_failed")
		return total, err
	}

	observability.Logger(ctx, s.logger).Info().Uint("course_id", course.ID).Int("recipients", total).Msg("course notifications created")
	return total, nil
}

func (s *notificationService) NotifyEducatorAssigned(ctx context.Context, educatorID uint, course models.Course) error {
	ctx, span := s.tracer.Start(ctx, "notifications.educator_assigned", trace.WithAttributes(
		attribute.Int("course.id", int(course.ID)),
		attribute.Int("educator.id", int(educatorID)),
	))
	defer span.End()

	notification := models.Notification{
		UserID:  educatorID,
		Message: s.clean(fmt.Sprintf("You have been assigned as an educator for the course \"%s\"", course.Title)),
		Type:    models.NotificationTypeSuccess,
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return err
	}

	observability.NotificationsCreated().WithLabelValues(triggerEducatorAssigned).Inc()
	s.deliver(ctx, []models.Notification{notification})
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, query dto.NotificationListQuery) ([]dto.NotificationResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	notifications, err := s.repo.ListByUser(ctx, userID, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) Subscribe(userID uint, transport string) (<-chan dto.NotificationResponse, func()) {
	channel := make(chan dto.NotificationResponse, notificationBufferSize)

	s.broker.subscribe(userID, channel)
	observability.NotificationStreams().WithLabelValues(transport).Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(userID, channel)
			observability.NotificationStreams().WithLabelValues(transport).Dec()
		})
	}

	return channel, cleanup
}

func (s *notificationService) clean(message string) string {
	return sanitizeText(s.sanitizer, message)
}

func (s *notificationService) deliver(ctx context.Context, notifications []models.Notification) {
	responses := dto.NewNotificationResponseSlice(notifications)
	for _, response := range responses {
		s.broker.broadcast(response.UserID, response)
	}

	if err := s.publish(ctx, responses); err != nil {
		observability.Logger(ctx, s.logger).Warn().Err(err).Msg("failed to relay notifications")
	}
}

func (s *notificationService) publish(ctx context.Context, notifications []dto.NotificationResponse) error {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(notificationEvent{
		Source:        s.nodeID,
		Notifications: notifications,
		SentAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

// consumeNATS uses a plain subscription: every instance must see every event
// to reach the streams it holds.
func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
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

	for _, notification := range event.Notifications {
		s.broker.broadcast(notification.UserID, notification)
	}
}

func (b *notificationBroker) subscribe(userID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[userID]; !exists {
		b.subscribers[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
}

func (b *notificationBroker) unsubscribe(userID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[userID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

func (b *notificationBroker) broadcast(userID uint, notification dto.NotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[userID] {
		select {
		case ch <- notification:
		default:
		}
	}
}
