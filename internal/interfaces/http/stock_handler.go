package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/application/stock"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

// StockHandler administración del libro de stock.
type StockHandler struct {
	uc  *stock.StockUseCase
	log *logger.Logger
}

func NewStockHandler(uc *stock.StockUseCase, log *logger.Logger) *StockHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StockHandler{uc: uc, log: log.Named("http")}
}

// Get godoc
// @Summary      Stock disponible de un producto en una tienda
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Param        storeId    path  int  true  "ID de la tienda"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /stock/{productId}/{storeId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	productID, ok1 := positiveParam(c, "productId")
	storeID, ok2 := positiveParam(c, "storeId")
	if !ok1 || !ok2 {
		return badID(c)
	}
	out, err := h.uc.Get(c.UserContext(), productID, storeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Set godoc
// @Summary      Fijar stock (upsert)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetStockRequest  true  "product_id, store_id, quantity"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /stock [put]
func (h *StockHandler) Set(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Set(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
