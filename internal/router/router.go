package router

import (
	"database/sql"

	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and mounts every API
// route. The notifier is the websocket hub; pass nil to disable
// broadcasts (tests).
func Setup(engine *gin.Engine, db *sql.DB, notifier services.Notifier) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	foodRepo := repositories.NewFoodRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	// Services
	authzService := services.NewAuthzService(userRepo)
	authService := services.NewAuthService(userRepo, tableRepo, db, notifier)
	userService := services.NewUserService(userRepo, db)
	roleService := services.NewRoleService(roleRepo, db)
	permissionService := services.NewPermissionService(permissionRepo, db)
	tableService := services.NewTableService(tableRepo, db, notifier)
	orderService := services.NewOrderService(orderRepo, tableRepo, foodRepo, db, notifier)
	transactionService := services.NewTransactionService(transactionRepo, orderRepo, tableRepo, db, notifier)
	foodService := services.NewFoodService(foodRepo, db)
	categoryService := services.NewCategoryService(categoryRepo, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	roleHandler := handlers.NewRoleHandler(roleService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	tableHandler := handlers.NewTableHandler(tableService, orderService)
	orderHandler := handlers.NewOrderHandler(orderService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	foodHandler := handlers.NewFoodHandler(foodService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupTableRoutes(authenticated, tableHandler, authzService)
		SetupOrderRoutes(authenticated, orderHandler, authzService)
		SetupTransactionRoutes(authenticated, transactionHandler, authzService)
		SetupFoodRoutes(authenticated, foodHandler, authzService)
		SetupCategoryRoutes(authenticated, categoryHandler, authzService)
		SetupUserRoutes(authenticated, userHandler, authzService)
		SetupRoleRoutes(authenticated, roleHandler, authzService)
		SetupPermissionRoutes(authenticated, permissionHandler, authzService)
	}
}
