package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrNoStoredSession is returned by Store.Load when nothing has been saved.
var ErrNoStoredSession = errors.New("no stored session")

// Store persists one session across processes.
type Store interface {
	Save(session Session) error
	Load() (Session, error)
	Delete() error
}

// Codec turns a session into bytes and back. JSONCodec is the plain
// encoding; SealedCodec adds authenticated encryption on top of it.
type Codec interface {
	Encode(session Session) ([]byte, error)
	Decode(data []byte) (Session, error)
}

// JSONCodec encodes sessions as plain JSON. The output contains the account
// password; prefer SealedCodec for anything written to disk.
type JSONCodec struct{}

func (JSONCodec) Encode(session Session) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "[JSONCodec.Encode] marshalling session")
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, errors.Wrap(err, "[JSONCodec.Decode] unmarshalling session")
	}
	return session, nil
}

// SealedCodec encrypts the JSON encoding with XChaCha20-Poly1305. The random
// nonce is prepended to the ciphertext. Tampered or truncated data fails to
// decode.
type SealedCodec struct {
	key []byte
}

// NewSealedCodec creates a codec from a 32-byte key.
func NewSealedCodec(key []byte) (*SealedCodec, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("[NewSealedCodec] key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &SealedCodec{key: append([]byte(nil), key...)}, nil
}

func (c *SealedCodec) Encode(session Session) ([]byte, error) {
	plaintext, err := JSONCodec{}.Encode(session)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, errors.Wrap(err, "[SealedCodec.Encode] creating cipher")
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "[SealedCodec.Encode] generating nonce")
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *SealedCodec) Decode(data []byte) (Session, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return Session{}, errors.Wrap(err, "[SealedCodec.Decode] creating cipher")
	}
	if len(data) < aead.NonceSize() {
		return Session{}, errors.New("[SealedCodec.Decode] data too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Session{}, errors.Wrap(err, "[SealedCodec.Decode] opening sealed session")
	}
	return JSONCodec{}.Decode(plaintext)
}

// FileStore persists the session to a single file, created owner-readable
// only.
type FileStore struct {
	Path  string
	Codec Codec
}

func (s *FileStore) codec() Codec {
	if s.Codec != nil {
		return s.Codec
	}
	return JSONCodec{}
}

func (s *FileStore) Save(session Session) error {
	data, err := s.codec().Encode(session)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Save] writing session file")
	}
	return nil
}

func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Session{}, ErrNoStoredSession
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "[FileStore.Load] reading session file")
	}
	return s.codec().Decode(data)
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Delete] removing session file")
	}
	return nil
}

// KeyringStore persists the session in the operating system's keyring, which
// keeps the credentials out of plain files entirely. The encoded session is
// base64-wrapped because keyring backends only take strings.
type KeyringStore struct {
	// Service and Account identify the keyring entry.
	Service string
	Account string
	Codec   Codec
}

func (s *KeyringStore) codec() Codec {
	if s.Codec != nil {
		return s.Codec
	}
	return JSONCodec{}
}

func (s *KeyringStore) Save(session Session) error {
	data, err := s.codec().Encode(session)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.Service, s.Account, base64.StdEncoding.EncodeToString(data)); err != nil {
		return errors.Wrap(err, "[KeyringStore.Save] writing keyring entry")
	}
	return nil
}

func (s *KeyringStore) Load() (Session, error) {
	encoded, err := keyring.Get(s.Service, s.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return Session{}, ErrNoStoredSession
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "[KeyringStore.Load] reading keyring entry")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Session{}, errors.Wrap(err, "[KeyringStore.Load] decoding keyring entry")
	}
	return s.codec().Decode(data)
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(s.Service, s.Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "[KeyringStore.Delete] removing keyring entry")
	}
	return nil
}
