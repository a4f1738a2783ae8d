// app/echoServer/jwtx/user.go
package jwtx

import "github.com/labstack/echo/v4"

// The auth middleware stores these after verifying the bearer token.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

func UserID(c echo.Context) int64 {
	id, _ := c.Get(CtxUserID).(int64)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}

func IsAdmin(c echo.Context) bool { return Role(c) == "admin" }
