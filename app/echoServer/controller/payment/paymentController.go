package payment

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	paymentsvc "rentique/service/payment"
)

const maxWebhookBody = 1 << 20 // 1 MiB

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/payments/stripe/webhook
//
// Always answers 200 on processing errors after the payload parsed, so
// Stripe does not retry events we have already rejected for business
// reasons. Only malformed payloads get a 400.
func (ct *Controller) StripeWebhook(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if err := ct.Svc.HandleStripe(c.Request().Context(), sig, raw); err != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("stripe webhook", "err", err, "req_id", rid)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "webhook rejected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
