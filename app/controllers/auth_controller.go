package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/bind"
	"github.com/shashiranjanraj/inventory/pkg/response"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login handles POST /login. Missing fields are treated as wrong credentials.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	token, err := c.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"access_token": token})
}
