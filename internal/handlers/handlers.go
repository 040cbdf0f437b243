package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"scrimhub/internal/config"
	"scrimhub/internal/identity"
	"scrimhub/internal/middleware"
	"scrimhub/internal/models"
	"scrimhub/internal/repository"
	"scrimhub/internal/service"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	provider   identity.Provider
	db         *pgxpool.Pool
	cache      *redis.Client
	users      *repository.UserRepository
	honor      *service.HonorService
	scrims     *service.ScrimService
	moderation *service.ModerationService
	teams      *service.TeamService
	social     *service.SocialService
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, provider identity.Provider, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	honorRepo := repository.NewHonorRepository(db)
	scrimRepo := repository.NewScrimRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	honor := service.NewHonorService(honorRepo, blockRepo, userRepo, notificationRepo, cache, cfg.Honor, log)
	scrims := service.NewScrimService(scrimRepo, teamRepo, notificationRepo, log)
	moderation := service.NewModerationService(userRepo, provider, cfg.Identity.OwnerUID, log)
	teams := service.NewTeamService(teamRepo, log)
	social := service.NewSocialService(blockRepo, notificationRepo, userRepo, honorRepo, log)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		provider:   provider,
		db:         db,
		cache:      cache,
		users:      userRepo,
		honor:      honor,
		scrims:     scrims,
		moderation: moderation,
		teams:      teams,
		social:     social,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.provider, h.users))
	{
		honor := v1.Group("/honor")
		honor.POST("/give", h.HonorGive)
		honor.POST("/revoke", h.HonorRevoke)
		honor.GET("/stats/:uid", h.HonorStats)
		honor.GET("/rankings", h.HonorRankings)

		scrims := v1.Group("/scrims")
		scrims.POST("", h.ScrimCreate)
		scrims.GET("", h.ScrimList)
		scrims.GET("/:scrimId", h.ScrimGet)
		scrims.POST("/:scrimId/challenge", h.ScrimChallenge)

		v1.POST("/teams/:teamId/members/role", h.TeamSetMemberRole)

		v1.POST("/blocks", h.BlockCreate)
		v1.DELETE("/blocks/:uid", h.BlockDelete)

		v1.GET("/notifications", h.NotificationList)
		v1.POST("/notifications/read", h.NotificationMarkRead)

		v1.GET("/me", h.Me)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleOwner, models.RoleAdmin, models.RoleModerator))
		admin.POST("/users/status", h.AdminUpdateUserStatus)
	}
}
