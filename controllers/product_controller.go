package controllers

import (
	"net/http"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Svc *services.ProductService
}

func NewProductController(svc *services.ProductService) *ProductController {
	return &ProductController{Svc: svc}
}

func (h *ProductController) GetProduct(c *gin.Context) {
	detail, err := h.Svc.GetDetail(c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ProductController) GetByBarcode(c *gin.Context) {
	product, err := h.Svc.GetByBarcode(c.Param("barcode"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductController) UploadProductImage(c *gin.Context) {
	data, contentType, err := readImageFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	product, err := h.Svc.AttachImage(c.Request.Context(), c.Param("id"), data, contentType)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": product.ImageURL})
}
