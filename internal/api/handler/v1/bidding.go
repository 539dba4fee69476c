package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/request"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

type BidService interface {
	ListItems(ctx context.Context, filter domain.ItemFilter) (domain.ItemPage, error)
	GetItem(ctx context.Context, id uint) (domain.CatalogItem, error)
	GetItemBySlug(ctx context.Context, slug string) (domain.CatalogItem, error)
	ListBids(ctx context.Context, itemID uint) ([]domain.Bid, error)
	SubmitBid(ctx context.Context, itemID uint, bidder domain.BidderContact, amount decimal.Decimal) (domain.Bid, error)
}

type BiddingHandler struct {
	svc BidService
}

func NewBiddingHandler(svc BidService) *BiddingHandler {
	return &BiddingHandler{
		svc: svc,
	}
}

// HandleListItems godoc
// @Summary      Browse the catalog
// @Description  Twelve items per page, newest first. Sold items are hidden unless a status is given. The search matches name, description and artist name, ignoring case.
// @Tags         items
// @Produce      json
// @Param        type    query     string  false  "Product type"  Enums(nft, physical, both)
// @Param        status  query     string  false  "Item status"   Enums(available, bidding, sold, reserved)
// @Param        search  query     string  false  "Search text"
// @Param        page    query     int     false  "Page number"
// @Success      200  {object}  domain.ItemPage
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items [get]
func (h *BiddingHandler) HandleListItems(ctx *gin.Context) {
	var req request.ListItemsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	page, err := h.svc.ListItems(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleListItems -> h.svc.ListItems -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// HandleGetItemBySlug godoc
// @Summary      Get a catalog item by slug
// @Tags         items
// @Produce      json
// @Param        slug  path      string  true  "Item slug"
// @Success      200  {object}  domain.CatalogItem
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items/slug/{slug} [get]
func (h *BiddingHandler) HandleGetItemBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	item, err := h.svc.GetItemBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "slug", slug))
			return
		}

		err = fmt.Errorf("HandleGetItemBySlug -> h.svc.GetItemBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleGetItem godoc
// @Summary      Get a catalog item
// @Description  Returns the item with its five highest bids.
// @Tags         items
// @Produce      json
// @Param        itemID  path      int  true  "Item ID"
// @Success      200  {object}  domain.CatalogItem
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items/{itemID} [get]
func (h *BiddingHandler) HandleGetItem(ctx *gin.Context) {
	itemID, respErr := uintParam(ctx, "itemID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	item, err := h.svc.GetItem(ctx.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		err = fmt.Errorf("HandleGetItem -> h.svc.GetItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleListBids godoc
// @Summary      List the bids on an item
// @Description  Highest amount first; equal amounts newest first.
// @Tags         items
// @Produce      json
// @Param        itemID  path      int  true  "Item ID"
// @Success      200  {array}   domain.Bid
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items/{itemID}/bids [get]
func (h *BiddingHandler) HandleListBids(ctx *gin.Context) {
	itemID, respErr := uintParam(ctx, "itemID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	bids, err := h.svc.ListBids(ctx.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		err = fmt.Errorf("HandleListBids -> h.svc.ListBids -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bids)
}

// HandleSubmitBid godoc
// @Summary      Place a bid
// @Description  The bid is accepted only when it is strictly higher than the current bid, or the starting bid, or the base price. A rejected bid reports the floor it had to beat.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        itemID  path      int                       true  "Item ID"
// @Param        input   body      request.SubmitBidRequest  true  "Bid"
// @Success      201  {object}  domain.Bid
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      429  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items/{itemID}/bids [post]
func (h *BiddingHandler) HandleSubmitBid(ctx *gin.Context) {
	itemID, respErr := uintParam(ctx, "itemID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubmitBidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bid, err := h.svc.SubmitBid(ctx.Request.Context(), itemID, req.Bidder(), req.Amount())
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("HandleSubmitBid -> h.svc.SubmitBid -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, bid)
}
