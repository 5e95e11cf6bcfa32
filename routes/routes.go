package routes

import (
	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/controllers"
	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Product  *controllers.ProductController
	Scan     *controllers.ScanController
	Home     *controllers.HomeController
	Realtime *controllers.RealtimeController
}

func SetupRouter(ctl Controllers, jwtSecret []byte) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctl.Auth.Register)
		auth.POST("/login", ctl.Auth.Login)
	}

	v1 := r.Group("/v1")
	v1.Use(middlewares.AuthMiddleware(jwtSecret))
	{
		v1.GET("/home", ctl.Home.GetHome)

		v1.GET("/me", ctl.User.GetMe)
		v1.PUT("/me", ctl.User.UpdateMe)
		v1.POST("/me/image", ctl.User.UploadProfileImage)
		v1.DELETE("/me", ctl.User.DeleteMe)

		v1.GET("/products/:id", ctl.Product.GetProduct)
		v1.GET("/products/barcode/:barcode", ctl.Product.GetByBarcode)
		v1.POST("/products/:id/image", ctl.Product.UploadProductImage)

		scans := v1.Group("/scan-history")
		{
			scans.POST("/barcode_image", ctl.Scan.ScanBarcode)
			scans.POST("/nutrition_label", ctl.Scan.ScanNutritionLabel)
			scans.POST("/image", ctl.Scan.ScanImage)
			scans.GET("", ctl.Scan.ListScans)
			scans.GET("/:id/details", ctl.Scan.GetScanDetail)
			scans.PATCH("/:id", ctl.Scan.RenameScan)
			scans.DELETE("/:id", ctl.Scan.DeleteScan)
		}

		v1.GET("/realtime/ws", ctl.Realtime.ScansWS)
	}

	return r
}
