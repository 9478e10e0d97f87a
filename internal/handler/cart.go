package handler

import (
	"net/http"

	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/dto"
	"angohost-storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	carts *cart.Store
}

func NewCartHandler(carts *cart.Store) *CartHandler {
	return &CartHandler{
		carts: carts,
	}
}

func (h *CartHandler) cartResponse(c echo.Context, sessionID string) *dto.CartResponse {
	ctx := c.Request().Context()
	items := h.carts.Items(ctx, sessionID)

	return &dto.CartResponse{
		Items:        items,
		Total:        cart.TotalPrice(items),
		RenewalTotal: cart.RenewalTotal(items),
		Flags:        cart.ComputeFlags(items),
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cartResponse(c, middleware.UserID(c)))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.UserID(c)

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Name == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "item needs a name and a non-negative price")
	}

	_, err := h.carts.AddItem(ctx, sessionID, cart.Item{
		Type:    req.Type,
		Name:    req.Name,
		Price:   req.Price,
		Period:  req.Period,
		Details: req.Details,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, sessionID))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.UserID(c)

	var item cart.Item
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	item.ID = c.Param("itemID")

	if err := h.carts.UpdateItem(ctx, sessionID, item); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, sessionID))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.UserID(c)

	if err := h.carts.RemoveItem(ctx, sessionID, c.Param("itemID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, sessionID))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.UserID(c)

	if err := h.carts.ClearCart(ctx, sessionID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, sessionID))
}

func (h *CartHandler) SetCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.UserID(c)

	var customer cart.Customer
	if err := c.Bind(&customer); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if customer.Name == "" || customer.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "customer needs a name and an email")
	}

	if err := h.carts.SetCustomer(ctx, sessionID, &customer); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()

	payment := h.carts.Payment(ctx, middleware.UserID(c))
	if payment == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, payment)
}
