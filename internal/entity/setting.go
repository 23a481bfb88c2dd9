package entity

import (
	"fmt"
	"time"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gorm.io/gorm"
)

// Setting names of the session timing parameters
const (
	SettingIdleTimeout      = "IdleTimeout"
	SettingValidateInterval = "ValidateInterval"
	SettingValidateGrace    = "ValidateGrace"
	SettingValidatorMode    = "ValidatorMode"
)

type Setting struct {
	Name  string
	Value string
}

func (setting Setting) TableName() string {
	return "setting"
}

func GetSettingList() ([]*Setting, error) {
	var settingList []*Setting
	if err := GetDB().Find(&settingList).Error; err != nil {
		return nil, err
	}
	return settingList, nil
}

// DropSetting empties the setting table
func DropSetting(tx *gorm.DB) error {
	return tx.Where("name <> ''").Delete(Setting{}).Error
}

// BatchInsertSetting inserts settings in one statement
func BatchInsertSetting(tx *gorm.DB, settings []Setting) error {
	return tx.Create(&settings).Error
}

// SessionSettings renders s as setting rows.
func SessionSettings(s config.SessionSettingS) []Setting {
	return []Setting{
		{Name: SettingIdleTimeout, Value: s.IdleTimeout.String()},
		{Name: SettingValidateInterval, Value: s.ValidateInterval.String()},
		{Name: SettingValidateGrace, Value: s.ValidateGrace.String()},
		{Name: SettingValidatorMode, Value: s.ValidatorMode},
	}
}

// InitSetting seeds the table from the loaded configuration
func InitSetting() error {
	return BatchInsertSetting(GetDB(), SessionSettings(config.GetSessionSetting()))
}

// ApplySettings overlays stored values on dst. Unknown names are ignored.
func ApplySettings(list []*Setting, dst *config.SessionSettingS) error {
	for _, val := range list {
		var err error
		switch val.Name {
		case SettingIdleTimeout:
			dst.IdleTimeout, err = time.ParseDuration(val.Value)
		case SettingValidateInterval:
			dst.ValidateInterval, err = time.ParseDuration(val.Value)
		case SettingValidateGrace:
			dst.ValidateGrace, err = time.ParseDuration(val.Value)
		case SettingValidatorMode:
			dst.ValidatorMode = val.Value
		}
		if err != nil {
			return fmt.Errorf("setting %s: %v", val.Name, err)
		}
	}
	return nil
}

// ValidateSessionSettings checks the ranges accepted for session timing.
func ValidateSessionSettings(s config.SessionSettingS) error {
	switch {
	case s.IdleTimeout < time.Minute:
		return fmt.Errorf("idle timeout must be at least 1m")
	case s.ValidateInterval < 5*time.Second:
		return fmt.Errorf("validate interval must be at least 5s")
	case s.ValidateGrace < 0:
		return fmt.Errorf("validate grace must not be negative")
	}
	switch s.ValidatorMode {
	case types.ValidatorInterval, types.ValidatorNavigation, types.ValidatorBoth:
		return nil
	}
	return fmt.Errorf("unknown validator mode %q", s.ValidatorMode)
}
