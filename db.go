package pomodo

import "database/sql"

type Database interface {
	DB() *sql.DB
	Migrate() error
	Close() error
}
