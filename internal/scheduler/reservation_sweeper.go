package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nvaghela/dukaan-backend/internal/app/service"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

// ReservationSweeper periodically releases upload slot reservations whose
// transfers were abandoned, so a crashed client cannot hold a slot forever.
type ReservationSweeper struct {
	cron          *cron.Cron
	uploadService service.UploadService
	maxAge        time.Duration
}

func NewReservationSweeper(uploadService service.UploadService, maxAge time.Duration) *ReservationSweeper {
	return &ReservationSweeper{
		cron:          cron.New(),
		uploadService: uploadService,
		maxAge:        maxAge,
	}
}

// Start runs the sweep every minute.
func (s *ReservationSweeper) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		released := s.uploadService.ReleaseStaleReservations(s.maxAge)
		if released > 0 {
			logger.Info("Swept stale upload reservations", map[string]interface{}{
				"released": released,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reservation sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Upload reservation sweeper started", map[string]interface{}{
		"max_age": s.maxAge.String(),
	})

	return nil
}

// Stop stops the sweeper.
func (s *ReservationSweeper) Stop() {
	logger.Info("Stopping upload reservation sweeper...", nil)
	s.cron.Stop()
	logger.Info("Upload reservation sweeper stopped", nil)
}
