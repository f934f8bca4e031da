package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/samedayramps/ramp-api/internal/config"
	"go.uber.org/zap"
)

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}

// CORS builds the CORS middleware. The quote-acceptance frontend is the only
// expected browser caller; outside development an explicit origin list is
// required, and an empty list denies all cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	development := environment == "development" || environment == "local" || environment == ""

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			if !development {
				logger.Warn("CORS wildcard origin outside development",
					zap.String("environment", environment))
			}
			options.AllowOriginFunc = allowAnyOrigin
			break
		}
	}

	switch {
	case options.AllowOriginFunc != nil:
		// wildcard handled above
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured", zap.Strings("origins", cfg.AllowedOrigins))
	case development:
		options.AllowOriginFunc = allowAnyOrigin
		logger.Info("CORS allowing all origins in development")
	default:
		// An empty AllowedOrigins slice would default to "*" inside the
		// cors package, so deny explicitly.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
