package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/application/stock"
	"github.com/jhoicas/purchases-api/pkg/jwt"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PlaceOrder      *purchase.PlaceOrderUseCase
	Lifecycle       *purchase.LifecycleUseCase
	Receipt         *purchase.ReceiptUseCase
	StockUC         *stock.StockUseCase
	Verifier        *jwt.Verifier
	Log             *logger.Logger
	OrdersPerMinute int // límite de POST /purchases por usuario; 0 = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok"})
	})

	auth := AuthMiddleware(deps.Verifier)

	// Purchases (protegido). Las rutas fijas van antes de /:id.
	purchases := app.Group("/purchases", auth)
	ph := NewPurchaseHandler(deps.PlaceOrder, deps.Lifecycle, deps.Receipt, deps.Log)
	purchases.Post("/", OrderRateLimit(deps.OrdersPerMinute), ph.Create)
	purchases.Get("/", ph.List)
	purchases.Get("/statuses", ph.Statuses)
	purchases.Get("/archive", RequireRole(jwt.RoleAdmin), ph.ListArchived)
	purchases.Get("/:id", ph.Get)
	purchases.Get("/:id/receipt", ph.Receipt)
	purchases.Put("/:id/status", RequireRole(jwt.RoleAdmin, jwt.RoleVendedor), ph.SetStatus)
	purchases.Put("/:id/archive", RequireRole(jwt.RoleAdmin), ph.Archive)

	// Stock (protegido; escritura solo admin y bodeguero)
	stockGroup := app.Group("/stock", auth)
	sh := NewStockHandler(deps.StockUC, deps.Log)
	stockGroup.Put("/", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), sh.Set)
	stockGroup.Get("/:productId/:storeId", sh.Get)
}
