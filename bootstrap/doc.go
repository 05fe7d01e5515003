// Package bootstrap runs a finite command with a uniform lifecycle: apply
// config defaults, validate, initialise the logger, run start hooks, run the
// task under a context canceled by SIGINT/SIGTERM, then run stop hooks within
// a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnStop(tracerProvider.Shutdown)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return process(ctx)
//	})
package bootstrap
