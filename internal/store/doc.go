// Package store keeps the latest rendered frame of every surface and fans
// updates out to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Frame]: What one surface displayed after a board update
//
// Subscribers receive updates via buffered channels with non-blocking sends;
// a slow subscriber misses frames rather than stalling board updates.
package store
