package reports

import (
	"github.com/rs/zerolog/log"

	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

// RegisterValidations adds the report_reason binding tag
func RegisterValidations() {
	if err := validator.Register("report_reason", func(s string) bool {
		return Reason(s).Valid()
	}); err != nil {
		log.Error().Err(err).Msg("failed to register report_reason validation")
	}
}
