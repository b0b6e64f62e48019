// Package stats is the inference engine for a two-arm conversion test.
//
// Every statistic is a pure function over group counts so it can be tested on
// its own; Compute partitions raw records and composes them into one
// domain.MetricsBundle.
//
// The significance test and the lift interval deliberately use different
// standard errors. The z-test pools both arms because under the null
// hypothesis they share one conversion rate. The interval estimates the true
// difference, so it uses the unpooled variance of each arm.
//
// Degenerate rates (exactly 0 or 1) are propagated, not clamped: the bundle
// carries a DegenerateRateWarning for each boundary group, and statistics that
// have no variance left (pooled rate 0 or 1) fail with a DegenerateRateError.
package stats
