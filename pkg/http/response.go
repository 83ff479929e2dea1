package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONResponse writes data as the whole response document.
func JSONResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// SuccessResponse writes a 200 document.
func SuccessResponse(c echo.Context, data interface{}) error {
	return JSONResponse(c, http.StatusOK, data)
}

// ValidationErrorResponse writes a 400 with field details.
func ValidationErrorResponse(c echo.Context, details []ValidationError) error {
	msg := "invalid request"
	if len(details) > 0 && details[0].Message != "" {
		msg = details[0].Message
	}
	return JSONResponse(c, http.StatusBadRequest, ErrorBody{Error: msg, Code: "ERR_VALIDATION", Details: details})
}

// InternalServerErrorResponse writes a generic 500.
func InternalServerErrorResponse(c echo.Context) error {
	return JSONResponse(c, http.StatusInternalServerError, ErrorBody{Error: "internal server error", Code: "ERR_INTERNAL"})
}

// AppErrorResponse writes an application error. Anything else becomes a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return JSONResponse(c, appErr.Status, ErrorBody{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details})
	}
	return InternalServerErrorResponse(c)
}
