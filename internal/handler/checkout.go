package handler

import (
	"errors"
	"net/http"

	"angohost-storefront/internal/dto"
	"angohost-storefront/internal/middleware"
	"angohost-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.Checkout(ctx, userID, userID, req.Method)
	if err != nil {
		return checkoutError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// checkoutError converts the checkout taxonomy into HTTP responses with
// short, actionable messages. Unknown errors pass through to echo's
// generic 500 handling.
func checkoutError(err error) error {
	var persistErr *service.PersistError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
			"message":  "Inicie sessão para concluir a compra.",
			"redirect": "/login",
		})
	case errors.Is(err, service.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"message":  "O carrinho está vazio.",
			"redirect": "/carrinho",
		})
	case errors.Is(err, service.ErrMissingCustomer):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"message": "Preencha os dados de faturação antes de pagar.",
		})
	case errors.Is(err, service.ErrInsufficientBalance):
		return echo.NewHTTPError(http.StatusPaymentRequired, map[string]string{
			"message": "Saldo insuficiente. Escolha outro método de pagamento.",
		})
	case errors.As(err, &persistErr):
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
			"message": "Não foi possível registar a encomenda. Tente novamente.",
			"stage":   string(persistErr.Stage),
		})
	default:
		return err
	}
}
