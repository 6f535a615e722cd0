// Package report forwards unhandled failures to Sentry.
//
// A Sentry reporter plugs into the web recovery middleware:
//
//	rep, err := report.NewSentry(report.SentryConfig{DSN: dsn, Environment: "prod"})
//	if err != nil {
//	    return err
//	}
//	defer rep.Flush(ctx)
//	router := web.NewRouter(web.RouterConfig{Reporter: rep})
//
// Each captured panic carries the request and its x_correlation_id tag.
package report
