// Package logging builds the slog logger of the digest binaries and carries
// the run ID of one pipeline run through the context.
//
// LOG_FORMAT selects json (default) or text output and LOG_LEVEL the minimum
// level. A run is tagged like this:
//
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logger := logging.WithRunID(ctx, slog.Default())
//	logger.InfoContext(ctx, "digest run started")
package logging
