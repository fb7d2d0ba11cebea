package config

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GetDB opens the configured database.
func GetDB(cnf Config) *gorm.DB {
	var db *gorm.DB
	var err error

	switch cnf.DBDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cnf.DBDSN), &gorm.Config{})
	default:
		if dir := filepath.Dir(cnf.DBDSN); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				logrus.Fatalf("creating db directory: %v", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(cnf.DBDSN), &gorm.Config{})
	}
	if err != nil {
		logrus.Fatalf("connecting to database: %v", err)
	}

	return db
}
