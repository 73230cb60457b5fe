package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/service"
	"github.com/Freeeeeet/studio_manager/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	Load(ctx context.Context, token string) (*service.Session, error)
	Refresh(ctx context.Context, token string) (*service.Session, error)
	Register(ctx context.Context, token, displayName string) (*service.Session, bool, error)
}

type PermissionService interface {
	Resolve(ctx context.Context, profileID uuid.UUID) (model.PermissionSet, error)
	SetRole(ctx context.Context, profileID uuid.UUID, roleName string) (*model.Profile, model.PermissionSet, error)
	SetPermission(ctx context.Context, profileID uuid.UUID, keyName string, granted bool) (model.PermissionSet, error)
}

type NoticeService interface {
	Publish(ctx context.Context, authorID uuid.UUID, title, content string) (*model.Notice, error)
	Update(ctx context.Context, profileID uuid.UUID, noticeID int64, title, content string) (*model.Notice, error)
	Delete(ctx context.Context, profileID uuid.UUID, noticeID int64) error
	Get(ctx context.Context, noticeID int64) (*model.Notice, error)
	List(ctx context.Context, limit, offset int) ([]*model.Notice, error)
}

type NotificationService interface {
	List(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error)
	Create(ctx context.Context, actorID, recipientID uuid.UUID, title, message, typeName string) (*model.Notification, error)
	MarkRead(ctx context.Context, profileID uuid.UUID, id int64) error
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, profileID uuid.UUID, id int64) error
}

type SettlementService interface {
	Aggregate(ctx context.Context, instructorID uuid.UUID, year, month int) (*settlement.Report, error)
}

type MemberService interface {
	List(ctx context.Context, statusFilter string) ([]*model.Member, error)
	Get(ctx context.Context, id int64) (*model.Member, error)
	SetStatus(ctx context.Context, id int64, statusName string) (*model.Member, error)
}

// EventSubscriber - источник событий сессии; nil если redis не настроен
type EventSubscriber interface {
	Subscribe(ctx context.Context, profileID uuid.UUID) (*events.Subscription, error)
}

// Services - зависимости HTTP слоя
type Services struct {
	Sessions      SessionService
	Permissions   PermissionService
	Notices       NoticeService
	Notifications NotificationService
	Settlements   SettlementService
	Members       MemberService
}

type Server struct {
	svc         Services
	subscriber  EventSubscriber
	corsOrigins []string
	keepAlive   time.Duration
	logger      *zap.Logger
}

func NewServer(svc Services, subscriber EventSubscriber, corsOrigins []string, logger *zap.Logger) *Server {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &Server{
		svc:         svc,
		subscriber:  subscriber,
		corsOrigins: corsOrigins,
		keepAlive:   25 * time.Second,
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// профиль может ещё не существовать
		r.Post("/session/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/session", s.handleGetSession)
			r.Post("/session/refresh", s.handleRefreshSession)
			r.Get("/session/events", s.handleSessionEvents)

			r.Get("/notifications", s.handleListNotifications)
			r.Get("/notifications/unread-count", s.handleUnreadCount)
			r.Post("/notifications", s.handleCreateNotification)
			r.Patch("/notifications/read-all", s.handleMarkAllRead)
			r.Patch("/notifications/{id}/read", s.handleMarkRead)
			r.Delete("/notifications/{id}", s.handleDeleteNotification)

			r.Get("/notices", s.handleListNotices)
			r.Get("/notices/{id}", s.handleGetNotice)
			r.Post("/notices", s.handlePublishNotice)
			r.Patch("/notices/{id}", s.handleUpdateNotice)
			r.Delete("/notices/{id}", s.handleDeleteNotice)

			r.With(requirePermission(model.MenuSettlements)).Get("/settlements/{instructorId}", s.handleGetSettlement)

			r.With(requirePermission(model.MenuMembers)).Get("/members", s.handleListMembers)
			r.With(requirePermission(model.MenuMembers)).Get("/members/{id}", s.handleGetMember)
			r.With(requireAdmin).Patch("/members/{id}/status", s.handleSetMemberStatus)

			r.Route("/admin/profiles/{id}", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Put("/role", s.handleSetRole)
				r.Get("/permissions", s.handleGetPermissions)
				r.Put("/permissions/{key}", s.handleSetPermission)
			})
		})
	})

	return r
}
