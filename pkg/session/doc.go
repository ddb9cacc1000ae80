// Package session provides persistent key-value storage for the console
// session.
//
// A Storage holds independent string slots (token, userId, username, role)
// that survive process restarts. Several backends are available:
//
//   - MemoryStorage: process-local, for tests and ephemeral shells
//   - FileStorage: a JSON file on disk, the default for the CLI
//   - KeyringStorage: the OS credential store via 99designs/keyring
//   - RedisStorage: a shared redis instance via go-redis
//   - SQLStorage: any database/sql driver (SQLite, PostgreSQL)
//
// All implementations are safe for concurrent use.
package session
