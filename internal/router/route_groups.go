package router

import (
	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts the authentication endpoints. Login is public,
// the rest require a valid token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	authenticated := apiGroup.Group("/auth")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.GET("/me", authHandler.Me)
		authenticated.POST("/refresh", authHandler.Refresh)
		authenticated.POST("/logout", authHandler.Logout)
	}
}

func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler, authz services.AuthzService) {
	tables := authenticatedGroup.Group("/tables")
	{
		tables.GET("", middleware.RequirePermission(authz, "table.index"), tableHandler.GetTables)
		tables.GET("/:id", middleware.RequirePermission(authz, "table.show"), tableHandler.GetTable)
		tables.GET("/:id/order", middleware.RequirePermission(authz, "table.show"), tableHandler.CurrentOrder)
		tables.POST("", middleware.RequirePermission(authz, "table.create"), tableHandler.CreateTable)
		tables.POST("/set", middleware.RequirePermission(authz, "table.update"), tableHandler.Seat)
		tables.PUT("/:id", middleware.RequirePermission(authz, "table.update"), tableHandler.UpdateTable)
		tables.DELETE("/:id", middleware.RequirePermission(authz, "table.delete"), tableHandler.DeleteTable)
	}
}

func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, authz services.AuthzService) {
	orders := authenticatedGroup.Group("/orders")
	{
		orders.GET("", middleware.RequirePermission(authz, "order.index"), orderHandler.GetOrders)
		orders.GET("/new", middleware.RequirePermission(authz, "order.index"), orderHandler.KitchenQueue)
		orders.GET("/:id", middleware.RequirePermission(authz, "order.show"), orderHandler.GetOrder)
		orders.POST("", middleware.RequirePermission(authz, "order.create"), orderHandler.PlaceOrder)
		orders.PATCH("/:id/details/:detailId/serve", middleware.RequirePermission(authz, "order.update"), orderHandler.ServeDetail)
		orders.DELETE("/:id/details/:detailId", middleware.RequirePermission(authz, "order.delete"), orderHandler.DeleteDetail)
		orders.DELETE("/:id", middleware.RequirePermission(authz, "order.delete"), orderHandler.DeleteOrder)
	}
}

func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, transactionHandler *handlers.TransactionHandler, authz services.AuthzService) {
	transactions := authenticatedGroup.Group("/transactions")
	{
		transactions.GET("", middleware.RequirePermission(authz, "transaction.index"), transactionHandler.GetTransactions)
		transactions.GET("/export", middleware.RequirePermission(authz, "transaction.export"), transactionHandler.Export)
		transactions.GET("/:id", middleware.RequirePermission(authz, "transaction.show"), transactionHandler.GetTransaction)
		transactions.POST("", middleware.RequirePermission(authz, "transaction.create"), transactionHandler.Checkout)
		transactions.POST("/import", middleware.RequirePermission(authz, "transaction.import"), transactionHandler.Import)
		transactions.DELETE("/:id", middleware.RequirePermission(authz, "transaction.delete"), transactionHandler.DeleteTransaction)
	}
}

func SetupFoodRoutes(authenticatedGroup *gin.RouterGroup, foodHandler *handlers.FoodHandler, authz services.AuthzService) {
	foods := authenticatedGroup.Group("/foods")
	{
		foods.GET("", middleware.RequirePermission(authz, "food.index"), foodHandler.GetFoods)
		foods.GET("/export", middleware.RequirePermission(authz, "food.export"), foodHandler.Export)
		foods.GET("/:id", middleware.RequirePermission(authz, "food.show"), foodHandler.GetFood)
		foods.POST("", middleware.RequirePermission(authz, "food.create"), foodHandler.CreateFood)
		foods.POST("/import", middleware.RequirePermission(authz, "food.import"), foodHandler.Import)
		foods.POST("/:id/image", middleware.RequirePermission(authz, "food.update"), foodHandler.SetImage)
		foods.PUT("/:id", middleware.RequirePermission(authz, "food.update"), foodHandler.UpdateFood)
		foods.DELETE("/:id", middleware.RequirePermission(authz, "food.delete"), foodHandler.DeleteFood)
	}
}

func SetupCategoryRoutes(authenticatedGroup *gin.RouterGroup, categoryHandler *handlers.CategoryHandler, authz services.AuthzService) {
	categories := authenticatedGroup.Group("/categories")
	{
		categories.GET("", middleware.RequirePermission(authz, "category.index"), categoryHandler.GetCategories)
		categories.GET("/export", middleware.RequirePermission(authz, "category.export"), categoryHandler.Export)
		categories.GET("/:id", middleware.RequirePermission(authz, "category.show"), categoryHandler.GetCategory)
		categories.POST("", middleware.RequirePermission(authz, "category.create"), categoryHandler.CreateCategory)
		categories.POST("/import", middleware.RequirePermission(authz, "category.import"), categoryHandler.Import)
		categories.PUT("/:id", middleware.RequirePermission(authz, "category.update"), categoryHandler.UpdateCategory)
		categories.DELETE("/:id", middleware.RequirePermission(authz, "category.delete"), categoryHandler.DeleteCategory)
	}
}

func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler, authz services.AuthzService) {
	users := authenticatedGroup.Group("/users")
	{
		users.GET("", middleware.RequirePermission(authz, "user.index"), userHandler.GetUsers)
		users.GET("/export", middleware.RequirePermission(authz, "user.export"), userHandler.Export)
		users.GET("/:id", middleware.RequirePermission(authz, "user.show"), userHandler.GetUser)
		users.POST("", middleware.RequirePermission(authz, "user.create"), userHandler.CreateUser)
		users.POST("/import", middleware.RequirePermission(authz, "user.import"), userHandler.Import)
		users.PUT("/:id", middleware.RequirePermission(authz, "user.update"), userHandler.UpdateUser)
		users.PUT("/:id/roles", middleware.RequirePermission(authz, "user.update"), userHandler.SyncRoles)
		users.DELETE("/:id", middleware.RequirePermission(authz, "user.delete"), userHandler.DeleteUser)
	}
}

func SetupRoleRoutes(authenticatedGroup *gin.RouterGroup, roleHandler *handlers.RoleHandler, authz services.AuthzService) {
	roles := authenticatedGroup.Group("/roles")
	{
		roles.GET("", middleware.RequirePermission(authz, "role.index"), roleHandler.GetRoles)
		roles.GET("/export", middleware.RequirePermission(authz, "role.export"), roleHandler.Export)
		roles.GET("/:id", middleware.RequirePermission(authz, "role.show"), roleHandler.GetRole)
		roles.POST("", middleware.RequirePermission(authz, "role.create"), roleHandler.CreateRole)
		roles.POST("/import", middleware.RequirePermission(authz, "role.import"), roleHandler.Import)
		roles.PUT("/:id", middleware.RequirePermission(authz, "role.update"), roleHandler.UpdateRole)
		roles.PUT("/:id/permissions", middleware.RequirePermission(authz, "role.update"), roleHandler.SyncPermissions)
		roles.DELETE("/:id", middleware.RequirePermission(authz, "role.delete"), roleHandler.DeleteRole)
	}
}

func SetupPermissionRoutes(authenticatedGroup *gin.RouterGroup, permissionHandler *handlers.PermissionHandler, authz services.AuthzService) {
	permissions := authenticatedGroup.Group("/permissions")
	{
		permissions.GET("", middleware.RequirePermission(authz, "permission.index"), permissionHandler.GetPermissions)
		permissions.GET("/export", middleware.RequirePermission(authz, "permission.export"), permissionHandler.Export)
		permissions.GET("/:id", middleware.RequirePermission(authz, "permission.show"), permissionHandler.GetPermission)
		permissions.POST("", middleware.RequirePermission(authz, "permission.create"), permissionHandler.CreatePermission)
		permissions.POST("/import", middleware.RequirePermission(authz, "permission.import"), permissionHandler.Import)
		permissions.PUT("/:id", middleware.RequirePermission(authz, "permission.update"), permissionHandler.UpdatePermission)
		permissions.DELETE("/:id", middleware.RequirePermission(authz, "permission.delete"), permissionHandler.DeletePermission)
	}
}
