// Package router wires controllers and middleware onto the gin engine.
package router

import (
	"net/http"
	"time"

	"farmerfriend-backend/internal/controller"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/metrics"
	"farmerfriend-backend/internal/middleware"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Auth        middleware.TokenValidator
	Limiter     ratelimit.Limiter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string

	Users    *controller.UserController
	Admin    *controller.AdminController
	Products *controller.ProductController
	Orders   *controller.OrderController
	Payments *controller.PaymentController
	Feedback *controller.FeedbackController
	Cart     *controller.CartController
	Contact  *controller.ContactController
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		logger.Requests(),
		d.Metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
			ExposeHeaders:    []string{logger.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Hello World!") })
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	authn := middleware.Authenticate(d.Auth)
	limited := middleware.RateLimit(d.Limiter, d.Metrics)
	farmer := middleware.RequireRoles(model.RoleFarmer)
	admin := middleware.RequireRoles(model.RoleAdmin)
	seller := middleware.RequireRoles(model.RoleFarmer, model.RoleAdmin)
	buyer := middleware.RequireRoles(model.RoleUser)

	api := r.Group("/api")

	user := api.Group("/user")
	user.POST("/register", limited, d.Users.Register)
	user.POST("/login", limited, d.Users.Login)
	user.POST("/adminlogin", limited, d.Users.AdminLogin)
	user.POST("/forgot-password", limited, d.Users.ForgotPassword)
	user.POST("/reset-password/:token", d.Users.ResetPassword)
	user.GET("/verify-token", authn, d.Users.VerifyToken)
	user.GET("/profile", authn, d.Users.Profile)
	user.PUT("/profile", authn, d.Users.UpdateProfile)
	user.PUT("/change-password", authn, d.Users.ChangePassword)
	user.POST("/home", authn, d.Users.Home)
	user.GET("/farmer-dashboard", authn, farmer, d.Users.Dashboard("Welcome to Farmer Dashboard"))
	user.GET("/admin-dashboard", authn, admin, d.Users.Dashboard("Welcome to Admin Dashboard"))

	adm := user.Group("/admin", authn, admin)
	adm.GET("/users", d.Admin.Users)
	adm.GET("/farmers", d.Admin.Farmers)
	adm.GET("/stats", d.Admin.Stats)
	adm.GET("/farmer/:farmerId", d.Admin.FarmerDetails)
	adm.DELETE("/user/:userId", d.Admin.DeleteAccount)

	product := api.Group("/product")
	product.POST("/addproduct", authn, seller, d.Products.Add)
	product.POST("/listproduct", d.Products.List)
	product.POST("/singleproduct", d.Products.Single)
	product.POST("/removeproduct", authn, seller, d.Products.Remove)
	product.GET("/farmer-products", authn, farmer, d.Products.FarmerProducts)
	product.PUT("/update-stock", authn, farmer, d.Products.UpdateStock)

	order := api.Group("/order", authn)
	order.POST("/create", d.Orders.Create)
	order.GET("/farmer-orders", farmer, d.Orders.FarmerOrders)
	order.GET("/user-orders", d.Orders.UserOrders)
	order.PUT("/update-status", farmer, d.Orders.UpdateStatus)

	payment := api.Group("/payment", authn)
	payment.POST("/create-order", d.Payments.CreateOrder)
	payment.POST("/verify-payment", d.Payments.Verify)

	feedback := api.Group("/feedback")
	feedback.POST("/create", authn, d.Feedback.Create)
	feedback.GET("/product/:productId", d.Feedback.ForProduct)
	feedback.POST("/like/:feedbackId", authn, d.Feedback.Like)
	feedback.POST("/reply/:feedbackId", authn, d.Feedback.Reply)

	cart := api.Group("/cart", authn, buyer)
	cart.GET("", d.Cart.Get)
	cart.POST("/add", d.Cart.Add)
	cart.PUT("/update", d.Cart.Update)
	cart.DELETE("", d.Cart.Clear)

	api.POST("/contact/send", d.Contact.Send)

	return r
}
