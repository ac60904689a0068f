package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the content schema migrations, registered by the files in this package.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
