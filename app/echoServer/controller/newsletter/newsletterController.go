package newsletter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"rentique/model"
	newslettersvc "rentique/service/newsletter"
)

type Controller struct {
	Svc newslettersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/newsletter/subscribe
func (ct *Controller) Subscribe(c echo.Context) error {
	var req model.SubscribeReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
	}

	res, err := ct.Svc.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, newslettersvc.ErrBadEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
		}
		ct.Log.Error("newsletter subscribe", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if res.AlreadySubscribed {
		return c.JSON(http.StatusOK, echo.Map{"message": "you are already subscribed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "subscribed successfully"})
}

// POST /v1/newsletter/unsubscribe
func (ct *Controller) Unsubscribe(c echo.Context) error {
	var req model.SubscribeReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
	}

	ok, err := ct.Svc.Unsubscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, newslettersvc.ErrBadEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
		}
		ct.Log.Error("newsletter unsubscribe", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unsubscribed successfully"})
}

// GET /v1/newsletter/status
func (ct *Controller) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"smtp_configured": ct.Svc.SMTPConfigured()})
}
