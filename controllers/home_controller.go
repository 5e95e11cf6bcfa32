package controllers

import (
	"net/http"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/services"

	"github.com/gin-gonic/gin"
)

type HomeController struct {
	Svc *services.HomeService
}

func NewHomeController(svc *services.HomeService) *HomeController {
	return &HomeController{Svc: svc}
}

func (h *HomeController) GetHome(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.Svc.GetHome(userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}
