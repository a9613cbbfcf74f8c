package jobs

import (
	"log"

	"github.com/anviedo/examline/services"
)

var lifecycle *services.LifecycleService

// Setup hands the lifecycle service to the cron jobs. Called once from main.
func Setup(l *services.LifecycleService) {
	lifecycle = l
}

// ReconcileExamWindows re-derives open/close timers from persisted deadlines.
// The registry lives in process memory only, so this is what survives a
// restart; it also retries close transitions that failed on a previous fire.
func ReconcileExamWindows() {
	log.Println("Running job: ReconcileExamWindows...")

	if err := lifecycle.RecoverExamWindows(); err != nil {
		log.Printf("Error reconciling exam windows: %v", err)
	}
}
