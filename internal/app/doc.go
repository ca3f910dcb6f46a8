// Package app wires the tabulation server together: it loads the survey named
// in the configuration, builds the services, mounts the chi router and runs
// the HTTP server until SIGINT or SIGTERM.
//
//	cfg, _ := config.Load("")
//	a, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Initialization errors are returned to the caller; the package never exits
// the process itself.
package app
