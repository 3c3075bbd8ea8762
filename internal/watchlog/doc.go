// Package watchlog records when TV series were watched.
//
// A Manager owns the four persisted tables (series, episode, series_watchlog
// and episode_watchlog), keeps the series and episode catalog rows in sync
// with TVMaze, and maintains the watch-log lifecycle: for any series at most
// one series_watchlog row is open (finished = 0) at a time, and a row that
// carries a finish date is never reopened.
//
// Read paths never mutate. When more than one open row is found for a series
// the anomaly is repaired only by RepairOpenSeriesWatchlogs or by one of the
// mutating operations, which run the repair before touching rows and log a
// warning when it acts.
package watchlog
