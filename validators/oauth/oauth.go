package oauthValidator

import (
	"meetly/middleware"
	"meetly/models"

	"github.com/gofiber/fiber/v2"
)

func validProvider(v string) bool {
	return v == models.ProviderGoogle || v == models.ProviderZoom
}

// Provider validates the :provider path parameter
func Provider() fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider := c.Params("provider")
		if !validProvider(provider) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Provider must be GOOGLE or ZOOM!", nil)
		}
		c.Locals("validatedProvider", provider)
		return c.Next()
	}
}

// Callback validates the OAuth redirect query
func Callback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code     string `query:"code"`
			State    string `query:"state"`
			Provider string `query:"provider"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}

		errs := make(map[string]string)
		if reqData.Code == "" {
			errs["code"] = "Authorization code is required!"
		}
		if !validProvider(reqData.Provider) {
			errs["provider"] = "Provider must be GOOGLE or ZOOM!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedCallback", reqData)
		return c.Next()
	}
}

// Disconnect validates a disconnect request
func Disconnect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Provider string `json:"provider"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if !validProvider(reqData.Provider) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Provider must be GOOGLE or ZOOM!", nil)
		}

		c.Locals("validatedDisconnect", reqData.Provider)
		return c.Next()
	}
}
