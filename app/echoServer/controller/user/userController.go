package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"rentique/app/echoServer/jwtx"
	"rentique/model"
	usersvc "rentique/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/users/profile
func (ct *Controller) Profile(c echo.Context) error {
	u, err := ct.Svc.Profile(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("profile", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/users/profile
func (ct *Controller) UpdateProfile(c echo.Context) error {
	var req model.UpdateProfileReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.UpdateProfile(c.Request().Context(), jwtx.UserID(c), req)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("update profile", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "user": u})
}

// GET /v1/users  (admin)
func (ct *Controller) List(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	users, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("list users", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": users})
}

// GET /v1/users/:id  (admin)
func (ct *Controller) Get(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}
	u, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("get user", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/users/:id  (admin)
func (ct *Controller) Update(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}
	var req model.UpdateProfileReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("update user", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /v1/users/:id  (admin)
func (ct *Controller) Delete(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}
	if id == jwtx.UserID(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete your own account")
	}
	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("delete user", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}

// PUT /v1/users/:id/role  (admin)
func (ct *Controller) UpdateRole(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}
	var req model.UpdateRoleReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be user or admin")
	}

	u, err := ct.Svc.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("update role", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "user": u})
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
