package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"rentique/app/echoServer/jwtx"
	"rentique/model"
	rs "rentique/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

func httpStatus(code rs.ErrCode) int {
	switch code {
	case rs.ErrValidation:
		return http.StatusBadRequest
	case rs.ErrForbidden:
		return http.StatusForbidden
	case rs.ErrProductNotFound, rs.ErrRentalNotFound, rs.ErrNoActiveRental:
		return http.StatusNotFound
	case rs.ErrProductUnavailable, rs.ErrInvalidTransition:
		return http.StatusConflict
	case rs.ErrPaymentSetup:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func message(code rs.ErrCode) string {
	switch code {
	case rs.ErrValidation:
		return "invalid rental dates"
	case rs.ErrForbidden:
		return "forbidden"
	case rs.ErrProductNotFound:
		return "product not found"
	case rs.ErrRentalNotFound:
		return "rental not found"
	case rs.ErrNoActiveRental:
		return "no active rental for product"
	case rs.ErrProductUnavailable:
		return "product is not available for rental"
	case rs.ErrInvalidTransition:
		return "invalid status transition"
	case rs.ErrPaymentSetup:
		return "payment processing failed"
	default:
		return "internal error"
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := rs.Code(err)
	if code == "" {
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(httpStatus(code), echo.Map{"message": message(code)})
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid := jwtx.UserID(c)

	out, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		return h.fail(c, "rental create", err)
	}

	resp := echo.Map{
		"rental":           out.Rental,
		"requires_payment": out.RequiresPayment,
	}
	if out.RequiresPayment {
		resp["client_secret"] = out.ClientSecret
	}
	return c.JSON(http.StatusCreated, resp)
}

// POST /v1/rentals/:id/confirm-payment
func (h *Controller) ConfirmPayment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rental, err := h.Svc.ConfirmPayment(c.Request().Context(), id, jwtx.UserID(c), jwtx.IsAdmin(c))
	if err != nil {
		return h.fail(c, "confirm payment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed", "rental": rental})
}

// PUT /v1/rentals/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateRentalStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	rental, err := h.Svc.UpdateStatus(c.Request().Context(), id, req.Status, jwtx.UserID(c), jwtx.IsAdmin(c))
	if err != nil {
		return h.fail(c, "update status", err)
	}
	return c.JSON(http.StatusOK, rental)
}

// POST /v1/rentals/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rental, err := h.Svc.Return(c.Request().Context(), id, jwtx.UserID(c), jwtx.IsAdmin(c))
	if err != nil {
		return h.fail(c, "rental return", err)
	}
	msg := "product returned successfully"
	if rental.Status == model.RentalReturnRequested {
		msg = "return requested"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "rental": rental})
}

// POST /v1/products/:id/force-return  (admin)
func (h *Controller) ForceReturn(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rental, err := h.Svc.ForceReturn(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "force return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rental force-returned", "rental": rental})
}

// POST /v1/rentals/:id/damage-report  (admin)
func (h *Controller) ReportDamage(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.DamageReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	rental, err := h.Svc.ReportDamage(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, "damage report", err)
	}
	return c.JSON(http.StatusOK, rental)
}

// GET /v1/rentals/my-rentals
func (h *Controller) MyRentals(c echo.Context) error {
	rows, err := h.Svc.MyRentals(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		return h.fail(c, "my rentals", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals  (admin)
func (h *Controller) ListAll(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.AllRentals(c.Request().Context())
	if err != nil {
		return h.fail(c, "list rentals", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rental, err := h.Svc.Get(c.Request().Context(), id, jwtx.UserID(c), jwtx.IsAdmin(c))
	if err != nil {
		return h.fail(c, "get rental", err)
	}
	return c.JSON(http.StatusOK, rental)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
