package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"oms-api/internal/auth"
	"oms-api/internal/models"
	"oms-api/internal/service"
	"oms-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users    service.UserStore
	products service.ProductStore
	carts    *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
	cards    *service.CardGenerator
	issuer   *auth.TokenIssuer
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users service.UserStore,
	products service.ProductStore,
	carts *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	cards *service.CardGenerator,
	issuer *auth.TokenIssuer,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		cards:    cards,
		issuer:   issuer,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", h.home)
	router.POST("/login", h.login)
	router.GET("/credit_card", h.creditCard)

	authed := router.Group("/", authMiddleware(h.issuer, h.users))
	{
		authed.GET("/products", h.listProducts)
		authed.GET("/product/:id", h.getProduct)

		authed.GET("/cart", h.getCart)
		authed.PUT("/cart", h.updateCart)
		authed.DELETE("/cart", h.clearCart)

		authed.POST("/checkout", h.doCheckout)

		authed.GET("/orders", h.listMyOrders)
		authed.GET("/orders/:id", h.getMyOrder)
	}

	panel := router.Group("/panel", authMiddleware(h.issuer, h.users), requireAdmin())
	{
		panel.GET("", h.adminPanel)
		panel.GET("/orders", h.adminListOrders)
		panel.GET("/orders/:id", h.adminGetOrder)
		panel.PUT("/orders/update-status", h.adminUpdateStatus)
		panel.DELETE("/orders/:id", h.adminDeleteOrder)
		panel.DELETE("/orders", h.adminDeleteAllOrders)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, "Greetings! You are on Order Management System")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login checks the base64-encoded password against the stored
// credential and returns the user's token.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(req.Password))
	if encoded != user.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Role.Admin() {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome admin! You are redirected to OMS Admin Panel",
			"token":   user.Token,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": user.Token})
}

func (h *Handler) creditCard(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name of the card holder is required"})
		return
	}
	c.JSON(http.StatusOK, h.cards.Generate(name))
}

type productView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{ProductID: p.ProductID, Name: p.Name, Price: p.Price})
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": productView{
		ProductID: product.ProductID,
		Name:      product.Name,
		Price:     product.Price,
	}})
}

func (h *Handler) getCart(c *gin.Context) {
	user := currentUser(c)
	cart, err := h.carts.GetCart(c.Request.Context(), user.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (h *Handler) updateCart(c *gin.Context) {
	var updates []service.CartUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart items list cannot be empty"})
		return
	}

	user := currentUser(c)
	cart, err := h.carts.UpdateCart(c.Request.Context(), user.UserID, updates)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound),
			errors.Is(err, service.ErrNameMismatch),
			errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully", "cart": cart})
}

func (h *Handler) clearCart(c *gin.Context) {
	user := currentUser(c)
	if err := h.carts.ClearCart(c.Request.Context(), user.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All products removed from cart", "cart": models.LineItems{}})
}

func (h *Handler) doCheckout(c *gin.Context) {
	var card models.CreditCard
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user := currentUser(c)
	result, err := h.checkout.Checkout(c.Request.Context(), user.UserID, card)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		if errors.Is(err, service.ErrInvalidCard) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listMyOrders(c *gin.Context) {
	user := currentUser(c)
	if len(user.Orders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No orders found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": user.Orders})
}

func (h *Handler) getMyOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	for _, summary := range user.Orders {
		if summary.OrderID == orderID {
			c.JSON(http.StatusOK, summary)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
}
