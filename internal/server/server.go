package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"

	"github.com/pbp/bookorama/internal/auth"
	"github.com/pbp/bookorama/internal/checkout"
	"github.com/pbp/bookorama/internal/config"
	"github.com/pbp/bookorama/internal/domain/consts"
	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
)

//go:generate mockgen -source=server.go -destination=./mocks/storage_mock.go -package=mocks

type Storage interface {
	SaveUser(models.User) (string, error)
	ValidUser(email, pass string) (models.User, error)
	GetUser(uid string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	UpdateUserName(email, name string) (models.User, error)

	SaveBook(models.Book) error
	GetBook(isbn string) (models.Book, error)
	GetBooks() ([]models.Book, error)
	UpdateBook(models.Book) (models.Book, error)
	DeleteBook(isbn string) error

	SaveCategory(models.Category) (models.Category, error)
	GetCategory(id int64) (models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(models.Category) (models.Category, error)
	DeleteCategory(id int64) error

	SaveOrder(models.Order) (string, error)
	GetOrder(oid string) (models.Order, error)
	GetOrders(userID string) ([]models.Order, error)
	GetAllOrders() ([]models.Order, error)
}

type Server struct {
	serv     *http.Server
	valid    *validator.Validate
	storage  Storage
	sessions *auth.Sessions
	checkout *checkout.Service
	adminKey string
	ErrChan  chan error
}

func New(cfg config.Config, stor Storage) *Server {
	server := http.Server{ //nolint:gosec // not today
		Addr: cfg.Addr,
	}
	return &Server{
		serv:     &server,
		valid:    validator.New(),
		storage:  stor,
		sessions: auth.NewSessions(cfg.JWTSecret, consts.SessionTTL),
		checkout: checkout.New(stor),
		adminKey: cfg.AdminKey,
		ErrChan:  make(chan error),
	}
}

func (s *Server) ShutdownServer() error {
	return s.serv.Shutdown(context.Background())
}

func (s *Server) Run(ctx context.Context) error {
	log := logger.Get()
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	admin := s.sessions.RequireRole(models.RoleAdmin)
	api := router.Group("/api")
	{
		api.GET("/", s.SessionProbe)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", s.Register)
			authRoutes.POST("/login", s.Login)
			authRoutes.POST("/logout", s.Logout)
		}
		api.GET("/books", s.AllBooks)
		api.GET("/book/:isbn", s.BookInfo)
		api.POST("/book", admin, s.AddBook)
		api.PUT("/book/:isbn", admin, s.UpdateBook)
		api.DELETE("/book/:isbn", admin, s.RemoveBook)

		api.GET("/categories", s.AllCategories)
		api.POST("/category", admin, s.AddCategory)
		api.GET("/category/:id", s.CategoryInfo)
		api.PUT("/category/:id", admin, s.UpdateCategory)
		api.DELETE("/category/:id", admin, s.RemoveCategory)

		api.GET("/profile", s.sessions.RequireAuth(), s.Profile)
		api.PUT("/profile", s.sessions.RequireAuth(), s.UpdateProfile)

		api.POST("/order", s.sessions.RequireAuth(), s.CreateOrder)
		api.GET("/order/:id", s.sessions.RequireAuth(), s.OrderInfo)
		api.GET("/orders", s.sessions.RequireAuth(), s.Orders)
	}

	s.serv.Handler = router
	log.Info().Str("host", s.serv.Addr).Msg("server started")
	if err := s.serv.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Close() error {
	return s.serv.Shutdown(context.TODO())
}

// noStore marks detail/list reads uncacheable so clients always see current
// state.
func noStore(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store")
}
