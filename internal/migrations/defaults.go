package migrations

import (
	"context"

	"github.com/rs/zerolog/log"
)

type userBackfiller interface {
	BackfillDefaults(ctx context.Context) (int64, error)
}

type reportBackfiller interface {
	BackfillStatus(ctx context.Context) (int64, error)
}

// Defaults lists the migrations the API applies at startup
func Defaults(usersRepo userBackfiller, reportsRepo reportBackfiller) []Migration {
	return []Migration{
		{
			Name: "2024_01_users_role_and_verification_defaults",
			Up: func(ctx context.Context) error {
				n, err := usersRepo.BackfillDefaults(ctx)
				if err == nil {
					log.Info().Int64("users", n).Msg("Backfilled user defaults")
				}
				return err
			},
		},
		{
			Name: "2024_02_reports_status_default",
			Up: func(ctx context.Context) error {
				n, err := reportsRepo.BackfillStatus(ctx)
				if err == nil {
					log.Info().Int64("reports", n).Msg("Backfilled report status")
				}
				return err
			},
		},
	}
}
