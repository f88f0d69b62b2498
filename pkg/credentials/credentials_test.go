package credentials

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

func testConn(source string) config.ConnectionConfig {
	return config.ConnectionConfig{
		Endpoint:       "https://tfs.example.com/tfs/",
		Collection:     "/DefaultCollection",
		Username:       "DOMAIN\\builder",
		PasswordSource: source,
	}
}

func TestAccount(t *testing.T) {
	assert.Equal(t, "https://tfs.example.com/tfs/DefaultCollection|DOMAIN\\builder", Account(testConn("")))
	assert.Equal(t, "https://tfs.example.com/tfs/DefaultCollection|me", Account(config.ConnectionConfig{
		Endpoint:   "https://tfs.example.com/tfs//",
		Collection: "DefaultCollection/",
		Username:   "me",
	}))
	assert.Equal(t, "", Account(config.ConnectionConfig{Endpoint: "https://x"}))
}

func TestResolve_Config(t *testing.T) {
	conn := testConn(config.PasswordSourceConfig)
	conn.Password = "inline"

	got, err := Resolve(conn)
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	conn.Password = ""
	_, err = Resolve(conn)
	var fetchErr *workitem.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, workitem.ErrorTypeConfiguration, fetchErr.Type)
}

func TestResolve_Env(t *testing.T) {
	conn := testConn(config.PasswordSourceEnv)

	t.Setenv(config.EnvPassword, "")
	_, err := Resolve(conn)
	assert.ErrorContains(t, err, config.EnvPassword)

	t.Setenv(config.EnvPassword, "from-env")
	got, err := Resolve(conn)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestResolve_Keyring(t *testing.T) {
	keyring.MockInit()
	conn := testConn(config.PasswordSourceKeyring)

	_, err := Resolve(conn)
	assert.ErrorIs(t, err, workitem.ErrPermission)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	require.NoError(t, Store(conn, "from-keychain"))
	got, err := Resolve(conn)
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got)

	require.NoError(t, Delete(conn))
	_, err = Load(conn)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestResolve_KeyringFailure(t *testing.T) {
	keyring.MockInit()
	keyringGet = func(service, user string) (string, error) {
		return "", errors.New("dbus unavailable")
	}
	t.Cleanup(func() { keyringGet = keyring.Get })

	_, err := Resolve(testConn(config.PasswordSourceKeyring))
	var fetchErr *workitem.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, workitem.ErrorTypeConfiguration, fetchErr.Type)
	assert.Contains(t, err.Error(), "dbus unavailable")
}

func TestResolve_UnknownSource(t *testing.T) {
	_, err := Resolve(testConn("vault"))
	assert.ErrorContains(t, err, "vault")
}

func TestStoreValidation(t *testing.T) {
	keyring.MockInit()

	assert.ErrorIs(t, Store(config.ConnectionConfig{}, "pw"), keyring.ErrNotFound)
	assert.Error(t, Store(testConn(config.PasswordSourceKeyring), ""))
	assert.ErrorIs(t, Delete(config.ConnectionConfig{}), keyring.ErrNotFound)
}
