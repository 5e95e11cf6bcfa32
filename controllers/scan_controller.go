package controllers

import (
	"net/http"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/services"

	"github.com/gin-gonic/gin"
)

type ScanController struct {
	Svc    *services.ScanService
	Detail *services.ScanDetailService
}

func NewScanController(svc *services.ScanService, detail *services.ScanDetailService) *ScanController {
	return &ScanController{Svc: svc, Detail: detail}
}

func (h *ScanController) ScanBarcode(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	barcode := c.PostForm("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode field required"})
		return
	}

	result, err := h.Svc.FromBarcodeAndImage(c.Request.Context(), userID, barcode, optionalImageFile(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ScanController) ScanNutritionLabel(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nutritionText := c.PostForm("nutrition_label")
	if nutritionText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nutrition_label field required"})
		return
	}

	result, err := h.Svc.FromNutritionText(c.Request.Context(), userID, nutritionText, optionalImageFile(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ScanController) ScanImage(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.Svc.FromImage(c.Request.Context(), userID, optionalImageFile(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ScanController) ListScans(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	scans, err := h.Svc.ListByDate(userID, date)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

func (h *ScanController) GetScanDetail(c *gin.Context) {
	detail, err := h.Detail.GetFullScan(c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

type RenameScanInput struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

func (h *ScanController) RenameScan(c *gin.Context) {
	var input RenameScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scan, err := h.Svc.UpdateNameCategory(c.Param("id"), input.Name, input.Category)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (h *ScanController) DeleteScan(c *gin.Context) {
	if err := h.Svc.SoftDelete(c.Param("id")); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "scan deleted"})
}

// optionalImageFile returns nil when no image part was sent.
func optionalImageFile(c *gin.Context) *services.ScanImage {
	data, contentType, err := readImageFile(c, "image")
	if err != nil {
		return nil
	}
	return &services.ScanImage{Data: data, ContentType: contentType}
}
