package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/request"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/middleware"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

type CatalogAdminService interface {
	CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error)
}

type BookingAdminService interface {
	CreateSite(ctx context.Context, site domain.TourismSite) (domain.TourismSite, error)
	UpdateBookingStatus(ctx context.Context, reference string, status domain.BookingStatus) (domain.Booking, error)
}

// AdminHandler serves the staff-only catalog and booking workflow routes.
type AdminHandler struct {
	catalog  CatalogAdminService
	bookings BookingAdminService
}

func NewAdminHandler(catalog CatalogAdminService, bookings BookingAdminService) *AdminHandler {
	return &AdminHandler{
		catalog:  catalog,
		bookings: bookings,
	}
}

// HandleCreateItem godoc
// @Summary      Add a catalog item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateItemRequest  true  "Item"
// @Success      201    {object}  domain.CatalogItem
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/items [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateItem(ctx *gin.Context) {
	var req request.CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.catalog.CreateItem(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleCreateItem -> h.catalog.CreateItem -> %w", err)))
		return
	}

	zap.L().Info("catalog item created", zap.Uint("item_id", item.ID), zap.Uint("staff_id", middleware.StaffID(ctx)))
	ctx.JSON(http.StatusCreated, item)
}

// HandleCreateSite godoc
// @Summary      Add a tourism site
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateSiteRequest  true  "Site"
// @Success      201    {object}  domain.TourismSite
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/sites [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateSite(ctx *gin.Context) {
	var req request.CreateSiteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	site, err := h.bookings.CreateSite(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleCreateSite -> h.bookings.CreateSite -> %w", err)))
		return
	}

	zap.L().Info("tourism site created", zap.Uint("site_id", site.ID), zap.Uint("staff_id", middleware.StaffID(ctx)))
	ctx.JSON(http.StatusCreated, site)
}

// HandleUpdateBookingStatus godoc
// @Summary      Move a booking through its workflow
// @Description  pending -> confirmed | cancelled, confirmed -> completed | cancelled.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        reference  path      string                              true  "Booking reference"
// @Param        input      body      request.UpdateBookingStatusRequest  true  "New status"
// @Success      200    {object}  domain.Booking
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/bookings/{reference}/status [patch]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateBookingStatus(ctx *gin.Context) {
	reference := ctx.Param("reference")

	var req request.UpdateBookingStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	booking, err := h.bookings.UpdateBookingStatus(ctx.Request.Context(), reference, domain.BookingStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("booking", "reference", reference))
			return
		}

		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleUpdateBookingStatus -> h.bookings.UpdateBookingStatus -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, booking)
}
