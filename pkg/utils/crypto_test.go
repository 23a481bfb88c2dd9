package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/utils"
)

func TestEncryptDecryptString(t *testing.T) {
	enc, err := utils.EncryptString("123456", "backend-token")
	require.NoError(t, err)
	assert.NotContains(t, enc, "backend-token")

	dec, err := utils.DecryptString("123456", enc)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", dec)
}

func TestDecryptStringWrongSecret(t *testing.T) {
	enc, err := utils.EncryptString("123456", "backend-token")
	require.NoError(t, err)

	_, err = utils.DecryptString("654321", enc)
	assert.Error(t, err)

	_, err = utils.DecryptString("123456", "zz")
	assert.Error(t, err)
	_, err = utils.DecryptString("123456", "abcd")
	assert.Error(t, err)
}

func TestStrTo(t *testing.T) {
	assert.Equal(t, 12, utils.StrTo("12").MustInt())
	assert.Equal(t, 0, utils.StrTo("x").MustInt())
}

func TestGetPageOffset(t *testing.T) {
	assert.Equal(t, 0, utils.GetPageOffset(1, 20))
	assert.Equal(t, 40, utils.GetPageOffset(3, 20))
	assert.Equal(t, 0, utils.GetPageOffset(0, 20))
}
