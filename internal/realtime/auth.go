package realtime

import (
	"fmt"

	"hotelcore/internal/shared/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AuthenticateConnect validates the bearer token carried on a websocket
// upgrade and resolves the Subscriber identity+role §4.5's connect
// lifecycle auto-joins off of. This is the realtime analogue of
// middleware.JWTAuthWithConfig, absorbing connect-time auth that a
// dedicated internal/auth package would otherwise own — the REST surface
// and the Hub share one token format but verify it at different points in
// the request lifecycle.
func AuthenticateConnect(cfg *config.Config, tokenString string) (Subscriber, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return Subscriber{}, fmt.Errorf("invalid or expired credential")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Subscriber{}, fmt.Errorf("malformed claims")
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Subscriber{}, fmt.Errorf("claim user_id is not a uuid: %w", err)
	}

	roleStr, _ := claims["role"].(string)
	sub := Subscriber{UserID: userID, Role: Role(roleStr)}

	if hotelIDStr, ok := claims["hotel_id"].(string); ok && hotelIDStr != "" {
		if hotelID, err := uuid.Parse(hotelIDStr); err == nil {
			sub.HotelID = &hotelID
		}
	}

	if tierStr, ok := claims["loyalty_tier"].(string); ok {
		sub.Tier = Tier(tierStr)
	}

	return sub, nil
}
