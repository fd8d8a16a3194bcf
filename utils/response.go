package utils

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

func CreateNotFound(ctx iris.Context) {
	JSONError(ctx, http.StatusNotFound, "not_found", "resource not found")
}

func CreateInternalServerError(ctx iris.Context) {
	JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
}

// HandleValidationErrors converts ReadJSON/validator failures into a 400
// listing the offending fields.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fe.Field())
		}
		JSONError(ctx, http.StatusBadRequest, "validation_error",
			"missing or invalid fields: "+strings.Join(fields, ", "))
		return
	}
	JSONError(ctx, http.StatusBadRequest, "invalid_payload", "could not parse request body")
}
