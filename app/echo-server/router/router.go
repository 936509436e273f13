package router

import (
	"garmentFactory/domain"
	"garmentFactory/internal/middleware"
	"garmentFactory/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupHealthRoutes(e *echo.Echo, api *echo.Group, handler *rest.HealthHandler) {
	api.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func SetupAuthRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.GET("/verify-email/:code", handler.VerifyEmail)

	auth.POST("/logout", handler.Logout, authRequired)
	auth.GET("/is-auth", handler.IsAuthenticated, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/user", authRequired)
	usersManage := middleware.RequireCapability(domain.CapUsersManage)

	users.GET("/data", handler.GetUserData)
	users.PUT("/profile", handler.UpdateProfile)

	users.GET("", handler.GetAllUsers, usersManage)
	users.GET("/:id", handler.GetUserByID, middleware.SelfOrCapability(domain.CapUsersManage))
	users.PUT("/:id/role", handler.UpdateUserRole, usersManage)
	users.DELETE("/:id", handler.DeleteUser, usersManage)
}

func SetupOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, payments *rest.PaymentsHandler, authRequired echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)
	ordersView := middleware.RequireCapability(domain.CapOrdersView)
	ordersManage := middleware.RequireCapability(domain.CapOrdersManage)

	orders.POST("", handler.CreateOrder)
	orders.GET("", handler.GetAllOrders, ordersView)
	orders.GET("/myorders", handler.GetMyOrders)
	orders.GET("/stats", handler.GetOrderStatistics)
	orders.GET("/statuses", handler.GetStatusPresentations)
	orders.GET("/:id", handler.GetOrderByID)

	orders.PUT("/:id/status", handler.UpdateOrderStatus, ordersManage)
	orders.PUT("/:id/cancel", handler.CancelOrder)
	orders.PUT("/:id/pay", handler.PayOrder)
	orders.PUT("/:id/deliver", handler.DeliverOrder, ordersManage)
	orders.POST("/:id/payment-link", payments.CreatePaymentLink)
}

func SetupPaymentsRoutes(api *echo.Group, handler *rest.PaymentsHandler) {
	payments := api.Group("/payments")

	payments.POST("/webhook", handler.XenditWebhook)
	payments.GET("/paid", handler.PaidResponse)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products", authRequired)
	productsManage := middleware.RequireCapability(domain.CapProductsManage)

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, productsManage)
	products.PUT("/:id", handler.UpdateProduct, productsManage)
	products.DELETE("/:id", handler.DeleteProduct, productsManage)
}

func SetupEmployeeRoutes(api *echo.Group, handler *rest.EmployeeHandler, authRequired echo.MiddlewareFunc) {
	employees := api.Group("/employees", authRequired, middleware.RequireCapability(domain.CapEmployeesManage))

	employees.GET("", handler.GetAllEmployees)
	employees.GET("/:id", handler.GetEmployeeByID)
	employees.POST("", handler.CreateEmployee)
	employees.PUT("/:id", handler.UpdateEmployee)
	employees.DELETE("/:id", handler.DeleteEmployee)
}

func SetupFinanceRoutes(api *echo.Group, handler *rest.FinanceHandler, authRequired echo.MiddlewareFunc) {
	finance := api.Group("/finance", authRequired, middleware.RequireCapability(domain.CapFinanceView))

	finance.GET("/kpis", handler.GetKPIs)
	finance.GET("/summary", handler.GetSummary)
	finance.GET("/monthly", handler.GetMonthly)
	finance.GET("/report.pdf", handler.GetReport)
}
