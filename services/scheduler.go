// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartBackupScheduler runs the weekly backup every Sunday at 08:00,
// Brasília time. The returned cron can be stopped on shutdown.
func StartBackupScheduler(backup *BackupService) *cron.Cron {
	location, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		location = time.Local
	}

	c := cron.New(cron.WithLocation(location))
	if _, err := c.AddFunc("0 8 * * 0", backup.RunWeeklyBackup); err != nil {
		log.Printf("backup scheduler: %v", err)
		return c
	}
	c.Start()
	log.Println("Backup scheduler started: Sundays at 08:00 America/Sao_Paulo")
	return c
}
