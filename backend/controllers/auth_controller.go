package controllers

import (
	"admissions/backend/config"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Svc *services.Services
	Cfg *config.Config
}

func NewAuthController(svc *services.Services, cfg *config.Config) *AuthController {
	return &AuthController{Svc: svc, Cfg: cfg}
}

type LoginRequest struct {
	Code string `json:"code" example:"081Kq4Ga1MS0Ry0Bqb1a1uT5Ga1Kq4GK"`
}

// Login godoc
// @Summary Log in with a mini-program login code
// @Description Exchanges the code for an identity, creates the profile on first login and returns a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login code"
// @Success 200 {object} utils.SuccessResponse
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	user, created, err := ac.Svc.Login(c.UserContext(), input.Code)
	if err != nil {
		return utils.RespondError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.RespondError(c, utils.Internal("Could not generate token", err))
	}

	return utils.CreatedOrOK(c, created, fiber.Map{
		"token":   token,
		"user":    user,
		"created": created,
	})
}
