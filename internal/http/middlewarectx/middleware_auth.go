// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха кладёт в контекст запроса Actor с данными вызывающего.
// OptionalJWTMiddleware делает то же самое, но пропускает запрос без токена
// с анонимным Actor: публичные чтения доступны без авторизации.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kopstant/lms-backend/internal/authz"
	jwtlib "github.com/kopstant/lms-backend/internal/lib/jwt"
	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey — ключ для Actor в контексте запроса.
const ActorKey Key = "actor"

// TokenParser описывает проверку access-токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwtlib.CustomClaims, error)
}

// ActorFromContext возвращает Actor из контекста запроса. Если middleware
// не отработал, возвращается анонимный Actor.
func ActorFromContext(ctx context.Context) authz.Actor {
	actor, ok := ctx.Value(ActorKey).(authz.Actor)
	if !ok {
		return authz.Actor{}
	}
	return actor
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет Actor в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			if claims.TokenType != "access" {
				log.Error("wrong token type", slog.String("token_type", claims.TokenType))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			actor := authz.ActorFromUser(claims.UserUID, claims.Email, claims.Role, claims.IsStaff)
			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware пропускает запрос без заголовка Authorization с
// анонимным Actor. Предъявленный токен всё равно проверяется: запрос с
// невалидным токеном отклоняется, а не понижается до анонимного.
func OptionalJWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	required := JWTMiddleware(parser, log)
	return func(next http.Handler) http.Handler {
		withToken := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				ctx := context.WithValue(r.Context(), ActorKey, authz.Actor{})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			withToken.ServeHTTP(w, r)
		})
	}
}
