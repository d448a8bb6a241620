package metrics

import "time"

// RecordStrategyAttempt records one strategy invocation.
func RecordStrategyAttempt(strategy, outcome string, duration time.Duration, items int) {
	StrategyAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	StrategyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if items > 0 {
		ItemsFetchedTotal.WithLabelValues(strategy).Add(float64(items))
	}
}

// RecordStrategyError records a strategy failure of the given kind.
func RecordStrategyError(strategy, kind string) {
	StrategyErrorsTotal.WithLabelValues(strategy, kind).Inc()
}

// RecordContentEnrich records an article enrichment attempt (success, failed, skipped).
func RecordContentEnrich(status string) {
	ContentEnrichTotal.WithLabelValues(status).Inc()
}

// RecordClassification records the parse outcome of one classification.
func RecordClassification(outcome string) {
	ClassificationsTotal.WithLabelValues(outcome).Inc()
}

// RecordReportBuilt records a finished report build.
func RecordReportBuilt(channel string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	ReportsBuiltTotal.WithLabelValues(channel, status).Inc()
	ReportBuildDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordCacheLookup records a report cache lookup result.
func RecordCacheLookup(result string) {
	ReportCacheTotal.WithLabelValues(result).Inc()
}

// RecordMarketData records a quote lookup.
func RecordMarketData(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	MarketDataRequestsTotal.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query duration.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
