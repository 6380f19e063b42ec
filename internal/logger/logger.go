package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the process-wide sugared logger. "prod"/"production" selects the
// JSON production config; anything else gets the development console config.
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return zapLogger.Sugar(), nil
}
