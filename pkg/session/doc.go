// Package session provides persistence for advisor sessions.
//
// A live session holds its state in memory on the server. When the
// browser disconnects, the server snapshots the session and hands the
// bytes to a Store so the session survives a reconnect, and with a
// shared backend, a server restart.
//
// # Stores
//
// The Store interface is the persistence contract:
//
//	store := session.NewMemoryStore()           // single server
//	store := session.NewRedisStore(redisClient) // shared across servers
//
// # Snapshots
//
// Snapshot is the serialized shape of a detached session: the route it
// was showing, its stored values, and the last patch sequence the
// client acknowledged.
package session
