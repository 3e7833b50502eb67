// Package refresh drives periodic board updates.
//
// A [Scheduler] runs a set of [Job] values, each on its own interval, with a
// bounded worker pool. Every job runs once immediately on start; after that
// the scheduler ticks at the greatest common divisor of all job intervals and
// runs only the jobs that are due. A job that panics is recovered and reported
// as a failed [Result] carrying a correlation id that also appears in the
// logs.
//
// [Feed] fetches remote line content over HTTP so a board can display text
// produced by another service.
package refresh
