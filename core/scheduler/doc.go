// Package scheduler triggers periodic ERP synchronization.
//
// A Scheduler runs one Job per tick of Config.Interval. Start blocks; Stop
// ends the loop and waits for a run that is still in progress.
//
//	s := scheduler.New(cfg.Scheduler, func(ctx context.Context) error {
//	    _, err := svc.Synchronize(ctx, nil, "scheduler")
//	    return err
//	}, logger)
//	go s.Start(ctx)
//	defer s.Stop()
package scheduler
