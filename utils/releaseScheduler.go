package utils

import (
	"log"
	"time"

	"trainhub/database"
	cohortModels "trainhub/models/cohort"

	"github.com/robfig/cron/v3"
)

// InitializeReleaseScheduler sets up the mini question release sweep
func InitializeReleaseScheduler() {
	log.Println("[RELEASE-SCHEDULER] Initializing release scheduler...")

	c := cron.New()

	// Every minute: release mini questions whose scheduled date has passed
	c.AddFunc("* * * * *", func() {
		RunReleaseSweep(time.Now())
	})

	c.Start()
	log.Println("[RELEASE-SCHEDULER] Release scheduler started - sweeps every minute")
}

// RunReleaseSweep runs one idempotent sweep as of the given time and returns
// how many mini questions it released. The cron calls it with time.Now();
// tests and the ops endpoint call it with an injected now.
func RunReleaseSweep(now time.Time) int64 {
	count, err := cohortModels.SweepMiniQuestionReleases(database.Database.Db, now)
	if err != nil {
		log.Printf("[RELEASE-SCHEDULER] Sweep failed: %v", err)
		return 0
	}
	if count > 0 {
		log.Printf("[RELEASE-SCHEDULER] Released %d mini questions", count)
		go NotifyWebhook("mini_questions.released", map[string]interface{}{
			"count":    count,
			"swept_at": now.UTC().Format(time.RFC3339),
		})
	}
	return count
}
