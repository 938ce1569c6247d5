package oauthController

import (
	"errors"
	"fmt"
	"log"
	"time"

	"meetly/config"
	"meetly/database"
	"meetly/meeting"
	"meetly/middleware"
	"meetly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// stateToken signs the connecting user's id into the OAuth state parameter
// so the callback can attribute the authorization without a session.
func stateToken(userID uint, provider string) (string, error) {
	claims := jwt.MapClaims{
		"userId":   userID,
		"provider": provider,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(10 * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

func parseStateToken(state, provider string) (uint, error) {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid state token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return 0, errors.New("invalid state payload")
	}
	if p, _ := claims["provider"].(string); p != provider {
		return 0, errors.New("state was issued for a different provider")
	}
	return uint(claims["userId"].(float64)), nil
}

// ConnectURL returns the provider authorization URL for the host to visit
func ConnectURL(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	providerName, ok := c.Locals("validatedProvider").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	provider, err := utils.MeetingProvisioner().Provider(providerName)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown provider!", nil)
	}

	state, err := stateToken(userId, providerName)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to prepare authorization!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Authorization URL generated!", fiber.Map{
		"authorizeUrl": provider.AuthorizeURL(state, utils.OAuthRedirectURI(providerName)),
	})
}

// Callback completes the OAuth flow: it exchanges the authorization code and
// stores the resulting tokens as the user's active connection.
func Callback(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCallback").(*struct {
		Code     string `query:"code"`
		State    string `query:"state"`
		Provider string `query:"provider"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	userId, err := parseStateToken(reqData.State, reqData.Provider)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired authorization state!", nil)
	}

	provider, err := utils.MeetingProvisioner().Provider(reqData.Provider)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown provider!", nil)
	}

	tokens, err := provider.ExchangeCode(reqData.Code, utils.OAuthRedirectURI(reqData.Provider))
	if err != nil {
		log.Printf("[OAUTH] Code exchange failed for user %d (%s): %v", userId, reqData.Provider, err)
		var pErr *meeting.ProviderError
		if errors.As(err, &pErr) {
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "The provider rejected the authorization: "+pErr.Message, nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to complete the authorization!", nil)
	}

	repo := database.NewConnectionRepo(database.Database.Db)
	connection, err := repo.Upsert(userId, reqData.Provider, *tokens)
	if err != nil {
		log.Printf("[OAUTH] Failed to store connection for user %d (%s): %v", userId, reqData.Provider, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store the connection!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Provider connected!", fiber.Map{
		"provider":  connection.Provider,
		"expiresAt": connection.ExpiresAt,
		"scope":     connection.Scope,
	})
}

// Disconnect deactivates the user's connection for one provider
func Disconnect(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	providerName, ok := c.Locals("validatedDisconnect").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	repo := database.NewConnectionRepo(database.Database.Db)
	if err := repo.Deactivate(userId, providerName); err != nil {
		if errors.Is(err, meeting.ErrNoActiveConnection) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active connection for this provider!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to disconnect!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Provider disconnected.", nil)
}

// ListConnections lists the user's provider connections without token values
func ListConnections(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	connections, err := database.NewConnectionRepo(database.Database.Db).ListForUser(userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch connections!", nil)
	}

	list := make([]fiber.Map, 0, len(connections))
	for _, conn := range connections {
		list = append(list, fiber.Map{
			"provider":  conn.Provider,
			"isActive":  conn.IsActive,
			"expiresAt": conn.ExpiresAt,
			"scope":     conn.Scope,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Connections fetched successfully!", fiber.Map{"connections": list})
}
