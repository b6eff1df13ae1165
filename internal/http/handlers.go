package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

func (s *Server) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := service.ParseID("id", c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// Auth handlers

// @Summary Register account
// @Tags auth
// @Accept json
// @Produce json
// @Param input body service.RegisterInput true "Account"
// @Success 201 {object} service.AuthPayload
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	p, err := s.svc.Auth.Register(c.Request.Context(), in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body service.LoginInput true "Credentials"
// @Success 200 {object} service.AuthPayload
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	p, err := s.svc.Auth.Login(c.Request.Context(), in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Product handlers

// @Summary List active products
// @Tags products
// @Produce json
// @Param q query string false "Name or description contains"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []domain.Product
		err  error
	)
	if q, ok := c.GetQuery("q"); ok {
		list, err = s.svc.Products.Search(ctx, q)
	} else {
		list, err = s.svc.Products.List(ctx, true)
	}
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	p, err := s.svc.Products.Get(c.Request.Context(), id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.CreateProductInput true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	var in service.CreateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	p, err := s.svc.Products.Create(ctx, in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Update product
// @Description Only the fields present in the body change.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param input body service.UpdateProductInput true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var in service.UpdateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	p, err := s.svc.Products.Update(ctx, id, in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Retire product
// @Description The product stays reachable by id and in past orders.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} errorResponse
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	p, err := s.svc.Products.Deactivate(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Order handlers

// @Summary Place order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.PlaceOrderInput true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	ctx := c.Request.Context()
	who, err := s.svc.Access.Authenticated(ctx)
	if err != nil {
		s.abort(c, err)
		return
	}
	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	o, err := s.svc.Orders.PlaceOrder(ctx, who.UserID, in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary List all orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	list, err := s.svc.Orders.ListAll(ctx)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Router /orders/mine [get]
func (s *Server) myOrders(c *gin.Context) {
	ctx := c.Request.Context()
	who, err := s.svc.Access.Authenticated(ctx)
	if err != nil {
		s.abort(c, err)
		return
	}
	list, err := s.svc.Orders.ListForUser(ctx, who.UserID)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} errorResponse
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	o, err := s.svc.Orders.Get(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	if err := s.svc.Access.OwnerOrAdmin(ctx, o.UserID); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Change order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param input body service.UpdateStatusInput true "Status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /orders/{id}/status [patch]
func (s *Server) updateOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var in service.UpdateStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.abort(c, err)
		return
	}
	o, err := s.svc.Orders.UpdateStatus(ctx, id, in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order
// @Description Returns every item to stock. Only PENDING and PROCESSING orders can be cancelled.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /orders/{id}/cancel [post]
func (s *Server) cancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	o, err := s.svc.Orders.Get(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	if err := s.svc.Access.OwnerOrAdmin(ctx, o.UserID); err != nil {
		s.abort(c, err)
		return
	}
	o, err = s.svc.Orders.Cancel(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// User handlers

// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.User
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	list, err := s.svc.Users.List(ctx)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} errorResponse
// @Router /users/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	u, err := s.svc.Users.Get(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary List a user's orders
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} domain.Order
// @Router /users/{id}/orders [get]
func (s *Server) userOrders(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Access.Admin(ctx); err != nil {
		s.abort(c, err)
		return
	}
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	list, err := s.svc.Orders.ListForUser(ctx, id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
