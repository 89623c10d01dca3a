// Package domain defines the core business entities of the notification
// pipeline: notifications, task snapshots, and the events that connect them.
// It has no dependencies on storage, transport, or delivery concerns.
package domain
