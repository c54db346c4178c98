// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package,
// plus the LISTEN/NOTIFY change listener feeding the watch dispatcher.
// It handles the details of database connections, query execution, and data
// mapping between domain entities and database records.
package postgres
