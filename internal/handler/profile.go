package handler

import (
	"net/http"

	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/dto"
	"angohost-storefront/internal/middleware"
	"angohost-storefront/internal/model"
	"angohost-storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// ProfileHandler manages reusable domain-registrant contact profiles.
// Profiles live in the backend collection and are mirrored into the cart
// session so one can be selected for the current domain purchase.
type ProfileHandler struct {
	carts       *cart.Store
	profileRepo repository.ContactProfileRepository
}

func NewProfileHandler(carts *cart.Store, profileRepo repository.ContactProfileRepository) *ProfileHandler {
	return &ProfileHandler{
		carts:       carts,
		profileRepo: profileRepo,
	}
}

func (h *ProfileHandler) ListProfiles(c echo.Context) error {
	ctx := c.Request().Context()

	profiles, err := h.profileRepo.ListByCustomer(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) SaveProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var profile cart.ContactProfile
	if err := c.Bind(&profile); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if profile.ProfileName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "profile needs a name")
	}

	saved, err := h.carts.SaveProfile(ctx, userID, profile)
	if err != nil {
		return err
	}

	err = h.profileRepo.Upsert(ctx, &model.ContactProfile{
		ID:           saved.ID,
		CustomerID:   userID,
		ProfileName:  saved.ProfileName,
		OwnerName:    saved.OwnerName,
		OwnerNIF:     saved.OwnerNIF,
		Organization: saved.Organization,
		Email:        saved.Email,
		Phone:        saved.Phone,
		Address:      saved.Address,
		City:         saved.City,
		Country:      saved.Country,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, saved)
}

func (h *ProfileHandler) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	profileID := c.Param("profileID")

	if err := h.carts.DeleteProfile(ctx, userID, profileID); err != nil {
		return err
	}
	if err := h.profileRepo.Delete(ctx, userID, profileID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) SelectProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SelectProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.carts.SelectProfile(ctx, middleware.UserID(c), req.ProfileID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// SelectedProfile resolves the current selection; a selection pointing at
// a deleted profile reads as none.
func (h *ProfileHandler) SelectedProfile(c echo.Context) error {
	ctx := c.Request().Context()

	profile := h.carts.SelectedProfile(ctx, middleware.UserID(c))
	if profile == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, profile)
}
