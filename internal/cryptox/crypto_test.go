package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)
	require.Len(t, key1, 32)
	assert.Equal(t, key1, key2)

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	assert.Equal(t, expectedHex, hex.EncodeToString(key1))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	assert.NotEqual(t, DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2")))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	plain := []byte(`{"version":1,"entries":{"accounts":"[]"}}`)

	sealed, err := Seal(plain, []byte("hunter2"))
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.False(t, bytes.Contains(sealed, []byte("accounts")))

	got, err := Open(sealed, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	again, err := Seal(plain, []byte("hunter2"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "salt and nonce are random")
}

func TestOpen_Failures(t *testing.T) {
	sealed, err := Seal([]byte("data"), []byte("right"))
	require.NoError(t, err)

	_, err = Open(sealed, []byte("wrong"))
	require.ErrorIs(t, err, ErrDecryptFailed)

	tampered := bytes.Clone(sealed)
	tampered[len(magic)] ^= 0xff
	_, err = Open(tampered, []byte("right"))
	require.ErrorIs(t, err, ErrDecryptFailed)

	_, err = Open([]byte(`{"version":1}`), []byte("right"))
	require.ErrorIs(t, err, ErrNotSealed)

	_, err = Open(sealed[:len(magic)+saltSize+2], []byte("right"))
	require.ErrorIs(t, err, ErrNotSealed)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Wipe(nil)
}
