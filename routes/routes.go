package routes

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ballnaha/p-post-sub003/cache"
	"github.com/ballnaha/p-post-sub003/handlers"
	"github.com/ballnaha/p-post-sub003/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler()
	inout := handlers.NewInOutHandler()
	filters := handlers.NewFiltersHandler(cache.NewTTL(5*time.Minute, 100))
	board := handlers.NewBoardHandler()
	per := handlers.NewPersonnelHandler()
	swap := handlers.NewSwapHandler()
	pc := handlers.NewPositionCodeHandler()
	dash := handlers.NewDashboardHandler()

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.POST("/admin/login", auth.AdminLogin)

	// หน้าตารางเข้า-ออก อ่านได้โดยไม่ต้อง login
	e.GET("/reconciled-positions", inout.List)
	e.GET("/reconciled-positions/filters", filters.List)

	// ===== Protected =====
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	authMW := middlewares.RequireAuth(secret)

	// ผังบอร์ด: ต้อง login (ทั้ง editor และ admin)
	e.GET("/personnel-board", board.Load, authMW, middlewares.RequireRole("editor", "admin"))
	e.POST("/personnel-board", board.Save, authMW, middlewares.RequireRole("editor", "admin"))
	e.DELETE("/personnel-board", board.Delete, authMW, middlewares.RequireRole("editor", "admin"))

	// ===== Admin routes =====
	admin := e.Group("/admin", authMW, middlewares.RequireRole("admin"))

	admin.GET("/personnel", per.List)
	admin.GET("/personnel/:id", per.GetByID)
	admin.POST("/personnel", per.Create)
	admin.PUT("/personnel/:id", per.Update)
	admin.DELETE("/personnel/:id", per.Delete)

	admin.GET("/swaps", swap.List)
	admin.GET("/swaps/:id", swap.GetByID)
	admin.POST("/swaps", swap.Create)
	admin.PUT("/swaps/:id", swap.Update)
	admin.DELETE("/swaps/:id", swap.Delete)

	admin.GET("/position-codes", pc.List)
	admin.POST("/position-codes", pc.Create)
	admin.PUT("/position-codes/:id", pc.Update)
	admin.DELETE("/position-codes/:id", pc.Delete)

	admin.GET("/dashboard/summary", dash.Summary)
}
