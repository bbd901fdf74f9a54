package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"resto_pos_backend/internal/database"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/router"
	"resto_pos_backend/internal/ws"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "resto_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "resto_password")
	dbName := utils.Getenv("DB_NAME", "resto_pos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	engine := gin.Default()
	engine.Use(utils.GinLogger())
	engine.Use(middleware.Metrics())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	hub := ws.NewHub()
	engine.GET("/ws", hub.Handler())

	uploadDir := utils.Getenv("UPLOAD_DIR", "uploads/foods")
	engine.Static("/uploads/foods", uploadDir)

	dbConn := database.GetDB()
	router.Setup(engine, dbConn, hub)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
