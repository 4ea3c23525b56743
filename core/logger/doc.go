// Package logger builds the zap logger shared by the HTTP server, the
// scheduler and the sync CLI.
//
// LOG_LEVEL picks the level (debug, info, warn, error); debug also switches
// to zap's development preset. LOG_FORMAT picks json or console encoding and
// LOG_SERVICE names the service on every entry.
//
// Two helpers add correlation fields:
//   - WithRayID tags request logs with the ray id set by the rayid middleware.
//   - WithRun tags sync logs with the run id and its trigger.
//
// Usage:
//
//	log, err := logger.New(&cfg.Log)
//	if err != nil {
//		return err
//	}
//	logger.WithRun(log, run.ID, erpsync.TriggerScheduler).Info("Sync run started")
package logger
