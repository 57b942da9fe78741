package web

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"

	"github.com/geekshopping/platform/product"
)

// TokenCookieName stores the catalog access token between requests.
const TokenCookieName = "access_token"

type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// RegisterWebRoutes mounts the storefront routes.
func RegisterWebRoutes[T any](app router.Router[T], controller *WebController) {
	app.Get("/", controller.HomeShow)

	app.Get(controller.Routes.Login, controller.LoginShow)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Logout, controller.LogOut)

	app.Get(controller.Routes.Products, controller.ProductIndex)
	app.Get(controller.Routes.Products+"/create", controller.ProductCreateShow)
	app.Post(controller.Routes.Products+"/create", controller.ProductCreatePost)
	app.Get(controller.Routes.Products+"/edit/:id", controller.ProductEditShow)
	app.Post(controller.Routes.Products+"/edit/:id", controller.ProductEditPost)
	app.Get(controller.Routes.Products+"/delete/:id", controller.ProductDeleteShow)
	app.Post(controller.Routes.Products+"/delete/:id", controller.ProductDeletePost)
}

type WebControllerRoutes struct {
	Login    string
	Logout   string
	Products string
}

type WebControllerViews struct {
	Home          string
	Login         string
	ProductIndex  string
	ProductForm   string
	ProductDelete string
}

type WebController struct {
	Logger   Logger
	Products *ProductService
	Identity *IdentityService
	Routes   *WebControllerRoutes
	Views    *WebControllerViews
}

type WebControllerOption func(*WebController) *WebController

func NewWebController(opts ...WebControllerOption) *WebController {
	c := &WebController{
		Logger: defLogger{},
		Routes: &WebControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Products: "/product",
		},
		Views: &WebControllerViews{
			Home:          "home",
			Login:         "login",
			ProductIndex:  "product_index",
			ProductForm:   "product_form",
			ProductDelete: "product_delete",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Products == nil {
		panic("Missing ProductService in web controller...")
	}

	if c.Identity == nil {
		panic("Missing IdentityService in web controller...")
	}

	return c
}

func WithProductService(s *ProductService) WebControllerOption {
	return func(c *WebController) *WebController {
		c.Products = s
		return c
	}
}

func WithIdentityService(s *IdentityService) WebControllerOption {
	return func(c *WebController) *WebController {
		c.Identity = s
		return c
	}
}

func WithWebLogger(logger Logger) WebControllerOption {
	return func(c *WebController) *WebController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func (a *WebController) HomeShow(ctx router.Context) error {
	return ctx.Render(a.Views.Home, router.ViewContext{
		"logged_in": a.token(ctx) != "",
	})
}

func (a *WebController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginPayload is the login form payload
type LoginPayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *WebController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	token, err := a.Identity.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("login token exchange: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  "Invalid username or password",
			"system_message": "Login failed",
		}).Render(a.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	ctx.Cookie(&router.Cookie{
		Name:     TokenCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	})

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Welcome back",
	}).Redirect("/", fiber.StatusSeeOther)
}

func (a *WebController) LogOut(ctx router.Context) error {
	ctx.Cookie(&router.Cookie{
		Name:    TokenCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Now().Add(-time.Hour),
	})

	return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func (a *WebController) ProductIndex(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	category := ctx.Query("category", "")

	records, err := a.Products.FindAll(ctx.Context(), token, category)
	if err != nil {
		a.Logger.Error("product list: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error loading products",
		}).Render(a.Views.ProductIndex, router.ViewContext{
			"records": nil,
		})
	}

	return ctx.Render(a.Views.ProductIndex, router.ViewContext{
		"records":           records,
		"categories":        product.Categories(),
		"selected_category": category,
	})
}

func (a *WebController) ProductCreateShow(ctx router.Context) error {
	if a.token(ctx) == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	return ctx.Render(a.Views.ProductForm, router.ViewContext{
		"record":     nil,
		"categories": product.Categories(),
		"action":     a.Routes.Products + "/create",
	})
}

func (a *WebController) ProductCreatePost(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	payload := new(product.Product)
	if err := ctx.Bind(payload); err != nil {
		return a.renderFormError(ctx, payload, err, a.Routes.Products+"/create")
	}

	if err := payload.Validate(); err != nil {
		return a.renderFormError(ctx, payload, err, a.Routes.Products+"/create")
	}

	if _, err := a.Products.Create(ctx.Context(), token, payload); err != nil {
		a.Logger.Error("product create: ", "error", err)
		return a.renderFormError(ctx, payload, err, a.Routes.Products+"/create")
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Product created",
	}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
}

func (a *WebController) ProductEditShow(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	record, err := a.Products.FindByID(ctx.Context(), token, id)
	if err != nil {
		a.Logger.Error("product load: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Product not found",
		}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	action := fmt.Sprintf("%s/edit/%s", a.Routes.Products, id)

	return ctx.Render(a.Views.ProductForm, router.ViewContext{
		"record":     record,
		"categories": product.Categories(),
		"action":     action,
	})
}

func (a *WebController) ProductEditPost(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	action := fmt.Sprintf("%s/edit/%s", a.Routes.Products, id)

	payload := new(product.Product)
	if err := ctx.Bind(payload); err != nil {
		return a.renderFormError(ctx, payload, err, action)
	}
	payload.ID = id

	if err := payload.Validate(); err != nil {
		return a.renderFormError(ctx, payload, err, action)
	}

	if _, err := a.Products.Update(ctx.Context(), token, payload); err != nil {
		a.Logger.Error("product update: ", "error", err)
		return a.renderFormError(ctx, payload, err, action)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Product updated",
	}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
}

func (a *WebController) ProductDeleteShow(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	record, err := a.Products.FindByID(ctx.Context(), token, id)
	if err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Product not found",
		}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	return ctx.Render(a.Views.ProductDelete, router.ViewContext{
		"record": record,
	})
}

func (a *WebController) ProductDeletePost(ctx router.Context) error {
	token := a.token(ctx)
	if token == "" {
		return ctx.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	if err := a.Products.Delete(ctx.Context(), token, id); err != nil {
		a.Logger.Error("product delete: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error deleting product",
		}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Product deleted",
	}).Redirect(a.Routes.Products, fiber.StatusSeeOther)
}

func (a *WebController) token(ctx router.Context) string {
	return ctx.Cookies(TokenCookieName)
}

func (a *WebController) renderFormError(ctx router.Context, record *product.Product, err error, action string) error {
	return flash.WithError(ctx, router.ViewContext{
		"error_message":  err.Error(),
		"system_message": "Error saving product",
	}).Render(a.Views.ProductForm, router.ViewContext{
		"record":     record,
		"categories": product.Categories(),
		"action":     action,
	})
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] WEB "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] WEB "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
