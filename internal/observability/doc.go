// Package observability groups the logging, metrics and tracing packages
// used across the digest pipeline. It holds no code of its own.
//
// Every pipeline run gets a run ID (logging.NewRunID) that is attached to its
// log lines and to the "digest.run" span, and its outcome is counted in
// digest_runs_total. The worker serves /metrics and /health while it runs on
// a cron schedule.
package observability
