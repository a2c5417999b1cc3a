package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/global"
)

const tokenTTL = 24 * time.Hour

type accessClaims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

// AuthRequired rejects requests that lack a valid access token before any
// store operation runs. The token rides in x-access-token, with
// Authorization: Bearer accepted as an alias.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("x-access-token")
		if tokenStr == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("missing access token", nil))
			return
		}

		token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(*jwt.Token) (interface{}, error) {
			return h.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("invalid access token", nil))
			return
		}
		claims, ok := token.Claims.(*accessClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("invalid access token", nil))
			return
		}
		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("invalid access token", nil))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func (h *Handler) issueToken(userID bson.ObjectID) (string, error) {
	claims := accessClaims{
		UserID: userID.Hex(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

// authedUser returns the user ID the middleware stored on the context.
func authedUser(c *gin.Context) bson.ObjectID {
	return c.MustGet("userID").(bson.ObjectID)
}
