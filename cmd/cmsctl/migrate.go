package main

import (
	"fmt"

	"blocks-cms/config"
	"blocks-cms/database"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	migrateDSN    string
	migrateSQLite string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table the registry describes",
	Long: `Create or update the fixed tables, one content table per content-carrying
model and one pivot table per block layout.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry()
		db := openDB()
		if err := database.Migrate(db, reg); err != nil {
			fatal("Migration failed", err)
		}
		fmt.Printf("Migrated %d models.\n", len(reg.Names()))
	},
}

// openDB connects to --sqlite, --db or $DB_URL, in that order.
func openDB() *gorm.DB {
	var dialector gorm.Dialector
	switch {
	case migrateSQLite != "":
		dialector = sqlite.Open(migrateSQLite)
	case migrateDSN != "":
		dialector = postgres.Open(migrateDSN)
	case config.DB_URL != "":
		dialector = postgres.Open(config.DB_URL)
	default:
		fatal("No database", fmt.Errorf("set --db, --sqlite or DB_URL"))
	}

	db, err := database.Open(dialector, config.DB_DEBUG)
	if err != nil {
		fatal("Failed to connect", err)
	}
	return db
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.PersistentFlags().StringVar(&migrateDSN, "db", "", "Postgres DSN (default $DB_URL)")
	rootCmd.PersistentFlags().StringVar(&migrateSQLite, "sqlite", "", "SQLite database file")
}
