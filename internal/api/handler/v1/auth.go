package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/request"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/middleware"
	"github.com/mkwawa-heritage/marketplace-api/internal/config"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/pkg/jwthelper"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (domain.Staff, error)
}

type StaffService interface {
	GetStaff(ctx context.Context, id uint) (domain.Staff, error)
}

type AuthHandler struct {
	conf     *config.APIConfig
	svc      AuthService
	staffSvc StaffService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, staffSvc StaffService) *AuthHandler {
	return &AuthHandler{
		conf:     conf,
		svc:      svc,
		staffSvc: staffSvc,
	}
}

// HandleLogin godoc
// @Summary      Login a staff member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	staff, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), staff.ID, ctx.Request.UserAgent(), h.conf.JWTTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		Staff: staff,
	})
}

// HandleMe godoc
// @Summary      Get the logged in staff member
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Staff
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	staffID := middleware.StaffID(ctx)

	staff, err := h.staffSvc.GetStaff(ctx.Request.Context(), staffID)
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("staff", "ID", staffID))
			return
		}

		err = fmt.Errorf("HandleMe -> h.staffSvc.GetStaff -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, staff)
}
