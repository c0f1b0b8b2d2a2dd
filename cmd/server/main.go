package main

import (
	"fmt"
	"log"
	"net/http"

	"gamefinder/backend/internal/auth"
	"gamefinder/backend/internal/config"
	"gamefinder/backend/internal/database"
	"gamefinder/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamefinder/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           GameFinder API
// @version         1.0
// @description     Matchmaking and chat API for the GameFinder service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	handler.Setup(database.DB)

	router := gin.Default()
	router.Use(cors.Default())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/logout", auth.AuthMiddleware(), handler.LogoutUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.DELETE("/me", handler.DeleteAccount)
			userRoutes.PUT("/me/avatar", handler.UpdateAvatar)
			userRoutes.PUT("/me/password", handler.UpdatePassword)
			userRoutes.GET("/me/ban", handler.GetMyBan)
			userRoutes.GET("/:nick", handler.GetUserByNick)
			userRoutes.GET("/:nick/presence/stream", handler.StreamPresence)

			// Reputation routes
			userRoutes.POST("/:nick/rate", handler.RateUser)
			userRoutes.POST("/:nick/report", handler.ReportUser)
		}

		// Catalog route (protected)
		apiV1.GET("/games", auth.AuthMiddleware(), handler.GetGames)

		// Matchmaking routes (protected)
		matchRoutes := apiV1.Group("/matchmaking")
		matchRoutes.Use(auth.AuthMiddleware())
		{
			matchRoutes.POST("/search", handler.StartSearch)
			matchRoutes.DELETE("/search", handler.CancelSearch)
			matchRoutes.GET("/state", handler.GetSearchState)
			matchRoutes.GET("/lobbies/:id/stream", handler.StreamLobby)
		}

		// Chat routes (protected)
		chatRoutes := apiV1.Group("/chats")
		chatRoutes.Use(auth.AuthMiddleware())
		{
			chatRoutes.GET("/recent", handler.GetRecentChats)
			chatRoutes.GET("/recent/stream", handler.StreamMe)
			chatRoutes.POST("/direct/:nick", handler.OpenDirectChat)
			chatRoutes.GET("/:roomID/messages", handler.GetMessages)
			chatRoutes.POST("/:roomID/messages", handler.SendMessage)
			chatRoutes.POST("/:roomID/read", handler.MarkRead)
			chatRoutes.POST("/:roomID/leave", handler.LeaveGroup)
			chatRoutes.GET("/:roomID/stream", handler.StreamRoom)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
