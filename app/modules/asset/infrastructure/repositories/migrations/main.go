package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the asset schema migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
