package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/database"
)

// RouterConfig carries every dependency the router needs. Using a config
// struct keeps the constructor signature stable as dependencies grow.
type RouterConfig struct {
	AuthService *auth.Service
	Catalog     CatalogSearcher
	ReadingList ReadingListManager
	Database    *database.Database
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	usersController := NewUsersController(cfg.AuthService)
	user := router.Group("/user")
	{
		user.POST("/signup", usersController.SignUp)
		user.POST("/signin", usersController.SignIn)
		user.POST("/refresh", usersController.RefreshToken)
	}

	booksController := NewBooksController(cfg.Catalog, cfg.ReadingList)
	authed := router.Group("/", auth.RequireAccessToken(cfg.AuthService))
	{
		authed.GET("/books", booksController.Search)
		authed.GET("/books/:bookId", booksController.GetBook)
		authed.POST("/books/my-books", booksController.AddToMyBooks)
		authed.PUT("/books/:id/reading", booksController.RecordProgress)
		authed.GET("/my-books", booksController.MyBooks)
	}

	return router
}
