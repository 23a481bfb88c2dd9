package entity_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
)

func TestMain(m *testing.M) {
	config.AppSetting.DbSavePath = "file:entity_test?mode=memory&cache=shared"
	if err := entity.AutoMigrate(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSettingsRoundTrip(t *testing.T) {
	db := entity.GetDB()
	require.NoError(t, entity.DropSetting(db))

	want := config.SessionSettingS{
		IdleTimeout:      10 * time.Minute,
		ValidateInterval: 45 * time.Second,
		ValidateGrace:    3 * time.Second,
		ValidatorMode:    "navigation",
	}
	require.NoError(t, entity.BatchInsertSetting(db, entity.SessionSettings(want)))

	list, err := entity.GetSettingList()
	require.NoError(t, err)
	require.Len(t, list, 4)

	var got config.SessionSettingS
	require.NoError(t, entity.ApplySettings(list, &got))
	assert.Equal(t, want, got)
}

func TestApplySettingsBadValue(t *testing.T) {
	var dst config.SessionSettingS
	err := entity.ApplySettings([]*entity.Setting{{Name: entity.SettingIdleTimeout, Value: "ten"}}, &dst)
	assert.Error(t, err)
}

func TestValidateSessionSettings(t *testing.T) {
	ok := config.SessionSettingS{IdleTimeout: 15 * time.Minute, ValidateInterval: 30 * time.Second, ValidatorMode: "both"}
	assert.NoError(t, entity.ValidateSessionSettings(ok))

	bad := ok
	bad.IdleTimeout = time.Second
	assert.Error(t, entity.ValidateSessionSettings(bad))

	bad = ok
	bad.ValidatorMode = "poll"
	assert.Error(t, entity.ValidateSessionSettings(bad))
}

func TestAuthEventList(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	for i, kind := range []string{"login_success", "logout", "login_failure"} {
		e := entity.NewAuthEvent(kind, "evt-user", "0202", "")
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, e.ExecTask())
	}
	require.NoError(t, entity.CreateAuthEvent(entity.NewAuthEvent("logout", "someone-else", "0303", "")))

	list, total, err := entity.GetAuthEventList(entity.AuthEventQuery{UserID: "evt-user", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "login_failure", list[0].Kind)
	assert.Equal(t, "logout", list[1].Kind)

	list, total, err = entity.GetAuthEventList(entity.AuthEventQuery{BranchCode: "0202", Kind: "logout"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}
