// Package postgres provides PostgreSQL implementations of the store
// interfaces on top of database/sql and the pgx stdlib driver. Queries are
// built with squirrel, the schema ships as embedded goose migrations, and
// driver errors are translated into store errors by MapError.
package postgres
