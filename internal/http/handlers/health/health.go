// Package health реализует HTTP-обработчик проверки работоспособности.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/response"
)

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Router /health [get]
func ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "healthy",
	}))
}
