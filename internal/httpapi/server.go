package httpapi

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/config"
	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
)

type SetService interface {
	Create(ctx context.Context, input service.CreateSetInput) (*entities.QuestionSet, error)
	List(ctx context.Context) ([]*service.SetWithQuestions, error)
	Get(ctx context.Context, setID int64) (*entities.QuestionSet, error)
	Update(ctx context.Context, setID int64, title, description string, rewardChannelID int64) (*entities.QuestionSet, error)
	Transition(ctx context.Context, setID int64, to entities.SetStatus) (*entities.QuestionSet, *service.RevealReport, error)
	Delete(ctx context.Context, setID int64) error
	CreateQuestion(ctx context.Context, q *entities.Question) (*entities.Question, error)
	UpdateQuestion(ctx context.Context, q *entities.Question) (*entities.Question, error)
	DeleteQuestion(ctx context.Context, questionID int64) error
}

type UserService interface {
	List(ctx context.Context) ([]*entities.User, error)
	SetBalance(ctx context.Context, userID, souls int64) error
}

type GraderService interface {
	Grade(ctx context.Context, answerID int64, correct bool) (int, error)
}

// AnswerDirectory serves the grading roster and the backup export.
type AnswerDirectory interface {
	ListBySet(ctx context.Context, setID int64) ([]*entities.AnswerWithQuestion, error)
	ListAll(ctx context.Context) ([]*entities.Answer, error)
}

// QuestionDirectory serves the backup export.
type QuestionDirectory interface {
	ListBySet(ctx context.Context, setID int64, activeOnly bool) ([]*entities.Question, error)
}

// ConfigDirectory backs the system settings endpoints.
type ConfigDirectory interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// EventNotifier mirrors admin actions into the event log channel.
type EventNotifier interface {
	LogEvent(ctx context.Context, title, body string)
}

// Server is the admin panel API.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	sessions  *SessionStore
	sets      SetService
	users     UserService
	grader    GraderService
	answers   AnswerDirectory
	questions QuestionDirectory
	kv        ConfigDirectory
	events    EventNotifier
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessions *SessionStore,
	sets SetService,
	users UserService,
	grader GraderService,
	answers AnswerDirectory,
	questions QuestionDirectory,
	kv ConfigDirectory,
	events EventNotifier,
) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		sessions:  sessions,
		sets:      sets,
		users:     users,
		grader:    grader,
		answers:   answers,
		questions: questions,
		kv:        kv,
		events:    events,
	}
}

// Router builds the gin engine with all admin routes mounted.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.HTTP.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.cfg.HTTP.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/login", s.handleLogin)
		api.POST("/logout", s.handleLogout)
		api.GET("/check-auth", s.handleCheckAuth)

		authed := api.Group("", s.requireAuth())
		{
			authed.GET("/sets", s.handleListSets)
			authed.POST("/sets", s.handleCreateSet)
			authed.PUT("/sets/:id", s.handleUpdateSet)
			authed.DELETE("/sets/:id", s.handleDeleteSet)
			authed.POST("/sets/:id/status", s.handleTransitionSet)

			authed.POST("/questions", s.handleCreateQuestion)
			authed.PUT("/questions/:id", s.handleUpdateQuestion)
			authed.DELETE("/questions/:id", s.handleDeleteQuestion)

			authed.GET("/sets/:id/answers", s.handleListAnswers)
			authed.POST("/answers/:id/grade", s.handleGradeAnswer)

			authed.GET("/users", s.handleListUsers)
			authed.PUT("/users/:id/balance", s.handleSetBalance)

			authed.GET("/config", s.handleGetConfig)
			authed.POST("/config", s.handleSetConfig)

			authed.GET("/backup", s.handleBackup)
		}
	}

	return router
}
