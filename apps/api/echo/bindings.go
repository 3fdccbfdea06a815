package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

// bindPagination reads the `skip` and `limit` query parameters; bad values fall back to the defaults.
func bindPagination(ctx echo.Context) core.Pagination {
	var page core.Pagination
	page.Skip, _ = strconv.Atoi(ctx.QueryParam("skip"))
	page.Limit, _ = strconv.Atoi(ctx.QueryParam("limit"))
	page.Clean()
	return page
}

// paramID parses the integer path parameter `name`.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryInt fills *dst from the query parameter `name` when it is still zero.
func queryInt(ctx echo.Context, name string, dst *int) {
	if *dst == 0 {
		*dst, _ = strconv.Atoi(ctx.QueryParam(name))
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
