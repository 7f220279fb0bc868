package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"post-radar/domain/dto"
	"post-radar/domain/repository"
	"post-radar/infrastructure/configuration"
)

// MemberClaims is the token payload: the subject is the member id.
type MemberClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

// Auth validates the bearer token and puts member_id into the gin context.
// Full session handling lives in the surrounding application; this is the
// narrow contract the pipeline endpoints rely on.
func Auth(memberRepository repository.IMember) gin.HandlerFunc {
	unauthorized := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}
		parts := strings.Split(authorization, "Bearer ")
		if len(parts) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}

		var claims MemberClaims
		token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(configuration.C.App.SecretKey), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}

		if memberRepository != nil {
			member, merr := memberRepository.GetByID(ctx.Request.Context(), claims.Subject)
			if merr != nil || member == nil {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
				return
			}
		}

		ctx.Set("member_id", claims.Subject)
		ctx.Next()
	}
}
