// Package store defines the persistence interfaces consumed by the
// notification core, along with the sentinel errors every implementation
// must return. Concrete implementations live under internal/platform.
package store
