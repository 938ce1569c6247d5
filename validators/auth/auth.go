package authValidator

import (
	"strings"
	"time"

	"meetly/middleware"
	"meetly/models"

	"github.com/gofiber/fiber/v2"
)

// SignupRequest is the validated signup payload.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Timezone string `json:"timezone"`
}

// LoginRequest is the validated login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup validates a signup request
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.Name == "" {
			errs["name"] = "Name is required!"
		}
		if reqData.Email == "" || !strings.Contains(reqData.Email, "@") {
			errs["email"] = "A valid email is required!"
		}
		if len(reqData.Password) < 8 {
			errs["password"] = "Password must be at least 8 characters!"
		}
		if reqData.Role == "" {
			reqData.Role = models.RoleMember
		} else if reqData.Role != models.RoleMember && reqData.Role != models.RoleHost {
			errs["role"] = "Role must be MEMBER or HOST!"
		}
		if reqData.Timezone == "" {
			reqData.Timezone = "UTC"
		} else if _, err := time.LoadLocation(reqData.Timezone); err != nil {
			errs["timezone"] = "Unknown timezone!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedSignup", reqData)
		return c.Next()
	}
}

// Login validates a login request
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.Email == "" {
			errs["email"] = "Email is required!"
		}
		if reqData.Password == "" {
			errs["password"] = "Password is required!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
