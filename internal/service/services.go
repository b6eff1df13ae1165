package service

// Services bundles what a transport dispatches to.
type Services struct {
	Auth     *AuthService
	Products *ProductService
	Orders   *OrderService
	Users    *UserService
	Access   Access
}
