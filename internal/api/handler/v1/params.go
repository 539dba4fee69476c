package v1

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
)

func uintParam(ctx *gin.Context, name string) (uint, *response.Err) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return uint(v), nil
}
