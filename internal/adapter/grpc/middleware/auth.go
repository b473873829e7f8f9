package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/iho/bankrecon/internal/infrastructure/auth"
	"github.com/iho/bankrecon/internal/infrastructure/logger"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ClaimsContextKey is the context key for the verified token claims
	ClaimsContextKey ContextKey = "claims"

	// AuthorizationHeader is the metadata key for authorization
	AuthorizationHeader = "authorization"
)

// AuthInterceptor creates a gRPC authentication interceptor. scopes maps a
// full method name to the scope it requires; methods not listed only need a
// valid token.
func AuthInterceptor(jwtManager *auth.JWTManager, scopes map[string]string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		values := md.Get(AuthorizationHeader)
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization token")
		}

		accessToken := strings.TrimPrefix(values[0], "Bearer ")

		claims, err := jwtManager.Verify(accessToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		if scope, ok := scopes[info.FullMethod]; ok && !claims.HasScope(scope) {
			return nil, status.Error(codes.PermissionDenied, "insufficient permissions")
		}

		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		ctx = logger.WithSubject(ctx, claims.Subject)

		return handler(ctx, req)
	}
}

// GetClaimsFromContext extracts the verified token claims from context
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}

// ChainUnaryServer chains multiple unary interceptors
func ChainUnaryServer(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			next := chain
			chain = func(ctx context.Context, req interface{}) (interface{}, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return chain(ctx, req)
	}
}
