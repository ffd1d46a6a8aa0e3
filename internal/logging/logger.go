// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/vera-landing/internal/lead"
)

// New builds a zap.Logger configured for development or production and
// installs it as the global logger.
func New(development bool) (*zap.Logger, error) {
	var (
		cfg zap.Config
		env string
	)
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		env = "dev"
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = false
		env = "prod"
	}
	cfg.EncoderConfig.TimeKey = "ts"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s logger: %w", env, err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LeadFields describes a lead for logs without its personal data: only the
// presence of optional fields and the attribution source are recorded.
func LeadFields(submissionID string, l lead.Lead) []zap.Field {
	return []zap.Field{
		zap.String("submission_id", submissionID),
		zap.Bool("has_email", l.Email != ""),
		zap.Bool("has_message", l.Message != ""),
		zap.Bool("has_quiz", l.Quiz != ""),
		zap.String("site_host", l.SiteHost),
		zap.String("utm_source", l.UTM.Source),
	}
}
