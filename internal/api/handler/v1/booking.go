package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/request"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

type BookingService interface {
	ListSites(ctx context.Context, siteType string) ([]domain.TourismSite, error)
	GetSite(ctx context.Context, id uint) (domain.TourismSite, error)
	GetSiteBySlug(ctx context.Context, slug string) (domain.TourismSite, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (domain.Booking, error)
}

type BookingHandler struct {
	svc BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{
		svc: svc,
	}
}

// HandleListSites godoc
// @Summary      List the active tourism sites
// @Tags         sites
// @Produce      json
// @Param        type  query     string  false  "Site type, e.g. museum or game_reserve"
// @Success      200  {array}   domain.TourismSite
// @Failure      500  {object}  response.Err
// @Router       /sites [get]
func (h *BookingHandler) HandleListSites(ctx *gin.Context) {
	sites, err := h.svc.ListSites(ctx.Request.Context(), ctx.Query("type"))
	if err != nil {
		err = fmt.Errorf("HandleListSites -> h.svc.ListSites -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sites)
}

// HandleGetSiteBySlug godoc
// @Summary      Get a tourism site by slug
// @Tags         sites
// @Produce      json
// @Param        slug  path      string  true  "Site slug"
// @Success      200  {object}  domain.TourismSite
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sites/slug/{slug} [get]
func (h *BookingHandler) HandleGetSiteBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	site, err := h.svc.GetSiteBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrSiteNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("site", "slug", slug))
			return
		}

		err = fmt.Errorf("HandleGetSiteBySlug -> h.svc.GetSiteBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, site)
}

// HandleGetSite godoc
// @Summary      Get a tourism site
// @Tags         sites
// @Produce      json
// @Param        siteID  path      int  true  "Site ID"
// @Success      200  {object}  domain.TourismSite
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sites/{siteID} [get]
func (h *BookingHandler) HandleGetSite(ctx *gin.Context) {
	siteID, respErr := uintParam(ctx, "siteID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	site, err := h.svc.GetSite(ctx.Request.Context(), siteID)
	if err != nil {
		if errors.Is(err, service.ErrSiteNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("site", "ID", siteID))
			return
		}

		err = fmt.Errorf("HandleGetSite -> h.svc.GetSite -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, site)
}

// HandleCreateBooking godoc
// @Summary      Book a visit
// @Description  Creates a pending booking priced by visitor type and head count. The response carries the booking reference.
// @Tags         sites
// @Accept       json
// @Produce      json
// @Param        siteID  path      int                           true  "Site ID"
// @Param        input   body      request.CreateBookingRequest  true  "Booking"
// @Success      201  {object}  domain.Booking
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      429  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sites/{siteID}/bookings [post]
func (h *BookingHandler) HandleCreateBooking(ctx *gin.Context) {
	siteID, respErr := uintParam(ctx, "siteID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bookingReq, err := req.ToDomain(siteID)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	booking, err := h.svc.CreateBooking(ctx.Request.Context(), bookingReq)
	if err != nil {
		if errors.Is(err, service.ErrSiteNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("site", "ID", siteID))
			return
		}

		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleCreateBooking -> h.svc.CreateBooking -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, booking)
}

// HandleGetBooking godoc
// @Summary      Look up a booking by reference
// @Tags         bookings
// @Produce      json
// @Param        reference  path      string  true  "Booking reference"
// @Success      200  {object}  domain.Booking
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings/{reference} [get]
func (h *BookingHandler) HandleGetBooking(ctx *gin.Context) {
	reference := ctx.Param("reference")

	booking, err := h.svc.GetBookingByReference(ctx.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("booking", "reference", reference))
			return
		}

		err = fmt.Errorf("HandleGetBooking -> h.svc.GetBookingByReference -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, booking)
}
