package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/pkg/jwt"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

// Cabeceras del protocolo de idempotencia.
const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
	maxIdempotencyKeyLen     = 200
)

// PurchaseHandler maneja las peticiones HTTP de compras (protegido).
type PurchaseHandler struct {
	placeOrder *purchase.PlaceOrderUseCase
	lifecycle  *purchase.LifecycleUseCase
	receipt    *purchase.ReceiptUseCase
	log        *logger.Logger
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(
	placeOrder *purchase.PlaceOrderUseCase,
	lifecycle *purchase.LifecycleUseCase,
	receipt *purchase.ReceiptUseCase,
	log *logger.Logger,
) *PurchaseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseHandler{placeOrder: placeOrder, lifecycle: lifecycle, receipt: receipt, log: log.Named("http")}
}

// Create godoc
// @Summary      Crear compra
// @Description  Bloquea la fila de stock, valida disponibilidad, registra la compra y descuenta en una transacción.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "clave del cliente para reintentos seguros"
// @Param        body             body    dto.CreatePurchaseRequest  true   "store_id, product_id, quantity, total_amount"
// @Success      201  {object}  dto.PurchaseResponse
// @Success      200  {object}  dto.PurchaseResponse  "reintento idempotente"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "Idempotency-Key reutilizada con otro cuerpo"
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	key := c.Get(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
	}
	userID := GetUserID(c)
	if in.UserID != 0 && canBuyOnBehalf(GetRole(c)) {
		userID = in.UserID
	}

	res, err := h.placeOrder.PlaceOrder(c.UserContext(), purchase.PlaceOrderInput{
		UserID:         userID,
		StoreID:        in.StoreID,
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		TotalAmount:    in.TotalAmount,
		IdempotencyKey: key,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	if res.Replayed {
		c.Set(HeaderIdempotentReplayed, "true")
		out := dto.PurchaseFromEntity(res.Purchase)
		out.ArchivedAt = res.ArchivedAt
		return c.Status(fiber.StatusOK).JSON(out)
	}
	c.Location(fmt.Sprintf("/purchases/%d", res.Purchase.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.PurchaseFromEntity(res.Purchase))
}

// canBuyOnBehalf roles que pueden registrar compras a nombre de otro usuario con user_id.
func canBuyOnBehalf(role string) bool {
	return role == jwt.RoleAdmin || role == jwt.RoleVendedor
}

// List godoc
// @Summary      Listar compras vivas
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.PurchaseResponse
// @Router       /purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	list, err := h.lifecycle.List(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.PurchasesFromEntities(list))
}

// Statuses godoc
// @Summary      Catálogo de estados de compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.PurchaseStatusResponse
// @Router       /purchases/statuses [get]
func (h *PurchaseHandler) Statuses(c *fiber.Ctx) error {
	list, err := h.lifecycle.ListStatuses(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StatusesFromEntities(list))
}

// ListArchived godoc
// @Summary      Listar compras archivadas
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.PurchaseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /purchases/archive [get]
func (h *PurchaseHandler) ListArchived(c *fiber.Ctx) error {
	list, err := h.lifecycle.ListArchived(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ArchivedFromEntities(list))
}

// Get godoc
// @Summary      Obtener compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /purchases/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	p, err := h.lifecycle.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.PurchaseFromEntity(p))
}

// Receipt godoc
// @Summary      Comprobante PDF de la compra (viva o archivada)
// @Tags         purchases
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la compra"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /purchases/{id}/receipt [get]
func (h *PurchaseHandler) Receipt(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	pdf, err := h.receipt.Render(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="compra-%d.pdf"`, id))
	return c.Send(pdf)
}

// SetStatus godoc
// @Summary      Cambiar estado de la compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "ID de la compra"
// @Param        body  body  dto.SetStatusRequest  true  "statusId"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /purchases/{id}/status [put]
func (h *PurchaseHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var in dto.SetStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.lifecycle.SetStatus(c.UserContext(), id, entity.PurchaseStatus(in.StatusID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.PurchaseFromEntity(p))
}

// Archive godoc
// @Summary      Archivar compra
// @Description  Mueve la compra al archivo y la elimina de las compras vivas.
// @Tags         purchases
// @Security     Bearer
// @Param        id   path  int  true  "ID de la compra"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /purchases/{id}/archive [put]
func (h *PurchaseHandler) Archive(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	if _, err := h.lifecycle.Archive(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pathID(c *fiber.Ctx) (int64, bool) {
	return positiveParam(c, "id")
}

func positiveParam(c *fiber.Ctx, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
