// Package api exposes the storefront over REST/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"

	"eshopperz/ent"
	"eshopperz/identity"
	"eshopperz/store"
)

// Store is the catalog and ordering persistence; *store.Store implements it.
type Store interface {
	ListProducts(ctx context.Context, f store.ProductFilter) ([]ent.Product, error)
	GetProduct(ctx context.Context, id int64) (ent.Product, error)
	FindProductByName(ctx context.Context, name string) (ent.Product, error)
	CreateProduct(ctx context.Context, p *ent.Product) error
	UpdateProduct(ctx context.Context, p ent.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ProductInUse(ctx context.Context, id int64) (bool, error)

	ListCategories(ctx context.Context) ([]ent.Category, error)
	GetCategory(ctx context.Context, id int64) (ent.Category, error)
	FindCategoryByName(ctx context.Context, name string) (ent.Category, error)
	CreateCategory(ctx context.Context, c *ent.Category) error
	UpdateCategory(ctx context.Context, c ent.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryInUse(ctx context.Context, id int64) (bool, error)

	ListCustomers(ctx context.Context) ([]ent.Customer, error)
	GetCustomer(ctx context.Context, id int64) (ent.Customer, error)
	CreateCustomer(ctx context.Context, c *ent.Customer) error
	UpdateCustomer(ctx context.Context, c ent.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error

	ListCarts(ctx context.Context) ([]ent.Cart, error)
	GetCart(ctx context.Context, id int64) (ent.Cart, error)
	CreateCart(ctx context.Context, c *ent.Cart) error
	UpdateCart(ctx context.Context, c ent.Cart) error
	DeleteCart(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]ent.Order, error)
	GetOrder(ctx context.Context, id int64) (ent.Order, error)
	CreateOrder(ctx context.Context, o *ent.Order) error
	UpdateOrder(ctx context.Context, o ent.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	ListOrderItems(ctx context.Context) ([]ent.OrderItem, error)
	GetOrderItem(ctx context.Context, k ent.OrderItemKey) (ent.OrderItem, error)
	CreateOrderItem(ctx context.Context, item ent.OrderItem) error
	UpdateOrderItem(ctx context.Context, item ent.OrderItem) error
	DeleteOrderItem(ctx context.Context, k ent.OrderItemKey) error

	CreateContactMessage(ctx context.Context, m *ent.ContactMessage) error
	ListContactMessages(ctx context.Context) ([]ent.ContactMessage, error)
}

type Server struct {
	store      Store
	identities *identity.Service
	tokens     *identity.TokenManager
	sessions   *session.Store
	log        logrus.FieldLogger
}

func NewServer(s Store, identities *identity.Service, sessions *session.Store, log logrus.FieldLogger) *Server {
	return &Server{
		store:      s,
		identities: identities,
		tokens:     identities.Tokens(),
		sessions:   sessions,
		log:        log,
	}
}

// NewApp builds a fiber app with the middleware stack and JSON error
// rendering shared by every route.
func NewApp(log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(), logger.New(logger.Config{Output: log.Out}), cors.New())

	return app
}

const unexpectedErrorMessage = "an unexpected error occurred"

// ErrorHandler renders errors as {"error": "..."}. Anything that is not a
// *fiber.Error is logged with the route and its parameters and reported as a
// generic 500.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		fields := logrus.Fields{
			"method": c.Method(),
			"route":  c.Route().Path,
		}
		for _, name := range c.Route().Params {
			fields[name] = c.Params(name)
		}
		log.WithError(err).WithFields(fields).Error("request failed")

		return c.Status(http.StatusInternalServerError).
			JSON(fiber.Map{"error": unexpectedErrorMessage})
	}
}

// Routes mounts the API under /api.
func (s *Server) Routes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/products", s.listProducts)
	api.Get("/products/:id", s.getProduct)
	api.Post("/products", s.createProduct)
	api.Put("/products/:id", s.updateProduct)
	api.Delete("/products/:id", s.deleteProduct)

	api.Get("/categories", s.listCategories)
	api.Get("/categories/:id", s.getCategory)
	api.Post("/categories", s.createCategory)
	api.Put("/categories/:id", s.updateCategory)
	api.Delete("/categories/:id", s.deleteCategory)

	api.Get("/customers", s.listCustomers)
	api.Get("/customers/:id", s.getCustomer)
	api.Post("/customers", s.createCustomer)
	api.Put("/customers/:id", s.updateCustomer)
	api.Delete("/customers/:id", s.deleteCustomer)

	api.Get("/carts", s.listCarts)
	api.Get("/carts/:id", s.getCart)
	api.Post("/carts", s.createCart)
	api.Put("/carts/:id", s.updateCart)
	api.Delete("/carts/:id", s.deleteCart)

	api.Get("/orders", s.listOrders)
	api.Get("/orders/:id", s.getOrder)
	api.Post("/orders", s.createOrder)
	api.Put("/orders/:id", s.updateOrder)
	api.Delete("/orders/:id", s.deleteOrder)

	const itemPath = "/order-items/:productId/:orderId/:dateOfOrder"
	api.Get("/order-items", s.listOrderItems)
	api.Get(itemPath, s.getOrderItem)
	api.Post("/order-items", s.createOrderItem)
	api.Put(itemPath, s.updateOrderItem)
	api.Delete(itemPath, s.deleteOrderItem)

	account := api.Group("/account")
	account.Post("/register", s.register)
	account.Get("/verify-email", s.verifyEmail)
	account.Post("/login", s.login)
	account.Post("/logout", s.logout)
	account.Delete("/", s.Authenticate, s.deleteAccount)

	roles := api.Group("/roles", s.Authenticate, RequireRole(identity.AdminRole))
	roles.Get("/", s.listRoles)
	roles.Get("/:id", s.getRole)
	roles.Post("/", s.createRole)
	roles.Post("/assign-role-to-user", s.assignRole)
	roles.Put("/:id", s.updateRole)
	roles.Delete("/:id", s.deleteRole)

	api.Post("/contact", s.createContactMessage)
	api.Get("/contact", s.Authenticate, RequireRole(identity.AdminRole), s.listContactMessages)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func decode(c *fiber.Ctx, v interface{}) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func created(c *fiber.Ctx, location string, v interface{}) error {
	c.Location(location)
	return c.Status(http.StatusCreated).JSON(v)
}

func notFound(what string) error {
	return fiber.NewError(http.StatusNotFound, what+" not found")
}

func conflict(msg string) error {
	return fiber.NewError(http.StatusConflict, msg)
}

func badRequest(msg string) error {
	return fiber.NewError(http.StatusBadRequest, msg)
}

// storeError maps store sentinels onto HTTP errors; anything else passes
// through to the error handler as an unexpected fault.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound(what)
	case errors.Is(err, store.ErrConflict):
		return conflict(err.Error())
	}
	return err
}

// mustExist turns a missing referenced row into a conflict.
func mustExist(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return conflict(what + " does not exist")
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// idTaken takes the error of a lookup by a client supplied id. The id is only
// usable when the row does not exist yet.
func idTaken(err error, what string) error {
	switch {
	case err == nil:
		return conflict(what + " with this id already exists")
	case isNotFound(err):
		return nil
	}
	return err
}
