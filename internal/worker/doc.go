// Package worker implements the external-channel delivery pipeline: a
// bounded multi-producer/multi-consumer job queue and a pool of workers
// that perform the external sends with per-job failure isolation.
package worker
