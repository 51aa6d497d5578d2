package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/spf13/viper"

	"github.com/mvisser/crimemap/internal/pkg/constants"
)

type AuthTokenWrapper struct {
	Secret string `json:"secret"`
	jwt.StandardClaims
}

func GenerateAuthToken(wrapper *AuthTokenWrapper) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wrapper)

	signed, err := token.SignedString([]byte(viper.GetString(constants.ViperSigningKey)))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	var claims AuthTokenWrapper
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString(constants.ViperSigningKey)), nil
	})
	if err != nil {
		return nil, constants.ErrUnauthorized
	}

	return &claims, nil
}
