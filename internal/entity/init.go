package entity

import (
	"fmt"
	"sync"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB
var once sync.Once

func GetDB() *gorm.DB {
	once.Do(func() {
		loadDB()
	})
	return db
}

func loadDB() {
	sqlDB, err := gorm.Open(sqlite.Open(config.AppSetting.DbSavePath), &gorm.Config{})
	if err != nil {
		panic(fmt.Errorf("failed to open database %s: %v", config.AppSetting.DbSavePath, err.Error()))
	}

	db = sqlDB.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Warn)})
}

func AutoMigrate() error {
	return GetDB().AutoMigrate(Setting{}, AuthEvent{})
}
