// Package mock provides test doubles for the integration suite.
package mock

import (
	"database/sql"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finflow/recurring-engine/internal/integration/persistence/model"
)

var dbOnce sync.Once
var db *Db

// Db wraps an in-memory sqlite connection shared by all scenarios.
type Db struct {
	DbConn *gorm.DB
	models []any
}

// NewDb returns the shared in-memory database, creating it on first use.
func NewDb() *Db {
	dbOnce.Do(func() {
		db = open()
	})
	return db
}

func open() *Db {
	sqlDB, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	// TranslateError makes duplicate-key violations visible to the
	// repositories the same way the postgres connection does.
	conn, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	models := []any{
		&model.AccountModel{},
		&model.RecurringTemplateModel{},
		&model.TransactionModel{},
	}
	if err := conn.AutoMigrate(models...); err != nil {
		panic("failed to migrate database. err: " + err.Error())
	}

	return &Db{
		DbConn: conn,
		models: models,
	}
}

// Reset removes all rows so each scenario starts from a clean database.
func (d *Db) Reset() error {
	for _, m := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error
		if err != nil {
			return err
		}
	}
	return nil
}
