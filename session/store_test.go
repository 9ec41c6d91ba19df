package session

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/valorantgo/valorant/auth"
	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/token"
)

func storedSession() Session {
	return Session{
		Credentials: &auth.Credentials{Username: "john.doe", Password: "hunter2"},
		AccessToken: token.AccessToken{
			Type:    "Bearer",
			Token:   "ACCESS",
			IDToken: "ID",
			Expiry:  time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		},
		EntitlementsToken: "ENTITLEMENTS",
		Cookies:           []auth.Cookie{{Name: "ssid", Value: "abc", Domain: "auth.riotgames.com", Path: "/"}},
		Location:          riot.Europe,
		UserID:            uuid.MustParse("3fa8598d-066e-5bdb-998c-74c015c5dba5"),
		HasExpired:        true,
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	original := storedSession()

	data, err := JSONCodec{}.Encode(original)
	require.NoError(t, err)

	decoded, err := JSONCodec{}.Decode(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestSealedCodecRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	codec, err := NewSealedCodec(key)
	require.NoError(t, err)

	original := storedSession()
	sealed, err := codec.Encode(original)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "hunter2", "the password must never appear in the sealed form")

	decoded, err := codec.Decode(sealed)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestSealedCodecRejectsTampering(t *testing.T) {
	codec, err := NewSealedCodec(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	sealed, err := codec.Encode(storedSession())
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0x01
	_, err = codec.Decode(sealed)
	require.Error(t, err)

	_, err = codec.Decode(sealed[:4])
	require.Error(t, err)
}

func TestSealedCodecRejectsWrongKeySize(t *testing.T) {
	_, err := NewSealedCodec([]byte("short"))
	require.Error(t, err)
}

func TestFileStore(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "session.json")}

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoStoredSession)

	original := storedSession()
	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, original, loaded)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoStoredSession)

	// deleting twice is fine
	require.NoError(t, store.Delete())
}

func TestFileStoreWithSealedCodec(t *testing.T) {
	codec, err := NewSealedCodec(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	store := &FileStore{Path: filepath.Join(t.TempDir(), "session.bin"), Codec: codec}

	original := storedSession()
	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, original, loaded)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := &KeyringStore{Service: "valorant-test", Account: "john.doe"}

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoStoredSession)

	original := storedSession()
	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, original, loaded)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoStoredSession)
	require.NoError(t, store.Delete())
}
