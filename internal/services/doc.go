// Package services sits between the transports (HTTP and CLI) and the survey
// core. It resolves question ids through the codebook, applies option
// overrides to the configured defaults, and records spans and metrics for
// every table it builds.
//
//	svc := services.NewTabulationService(cb, ds, services.TabulationConfig{
//	    Defaults:          cfg.TableOptions(),
//	    SignificanceLevel: cfg.Tables.SignificanceLevel,
//	    ReportWorkers:     cfg.Tables.ReportWorkers,
//	}, metrics, logger)
//
//	settings, err := svc.Settings(api.TableOptionsRequest{})
//	table, err := svc.CrossTab(ctx, "satisfaction", "region", settings)
//
// BuildReport fans the tables of a report out over an errgroup bounded by
// ReportWorkers and returns them in request order.
package services
