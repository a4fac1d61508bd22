// util for pulling identity out of the verified token.
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func claims(c echo.Context) (jwt.MapClaims, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, errors.New("no jwt token in context")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	return mc, nil
}

// UserIDFromContext returns the authenticated user's id (sub claim).
func UserIDFromContext(c echo.Context) (primitive.ObjectID, error) {
	mc, err := claims(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	s, ok := mc["sub"].(string)
	if !ok || s == "" {
		return primitive.NilObjectID, errors.New("sub missing in claims")
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, errors.New("sub is not a valid id")
	}
	return id, nil
}

// RolFromContext returns the rol claim, empty when absent.
func RolFromContext(c echo.Context) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	s, _ := mc["rol"].(string)
	return s
}
