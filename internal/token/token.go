// Package token builds the versioned, signed channel access credential:
// "007" + appID + base64(deflate(signing block ++ payload)).
package token

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	"github.com/klauspost/compress/flate"
)

// Version is the 3-character tag prepended to every encoded token.
const Version = "007"

type Role string

const (
	RolePublisher  Role = "publisher"
	RoleSubscriber Role = "subscriber"
)

var (
	ErrEmptyChannel       = errors.New("channel name is empty")
	ErrInvalidExpire      = errors.New("expire seconds must be positive")
	ErrMissingCredentials = errors.New("app id or certificate not set")
	ErrUnknownRole        = errors.New("unknown role")
)

// ParseRole maps a query-string role to a token role. Empty defaults to
// subscriber.
func ParseRole(s string) (Role, error) {
	switch s {
	case "", string(RoleSubscriber):
		return RoleSubscriber, nil
	case string(RolePublisher):
		return RolePublisher, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Builder issues tokens for one application identity. It holds the signing
// key and nothing else; Build is safe for concurrent use.
type Builder struct {
	appID   string
	appCert string
}

func NewBuilder(appID, appCert string) (*Builder, error) {
	if appID == "" || appCert == "" {
		return nil, ErrMissingCredentials
	}
	return &Builder{appID: appID, appCert: appCert}, nil
}

func (b *Builder) AppID() string { return b.appID }

// Build issues a token for uid on channel, valid for expireAfter seconds
// from issuedAt (unix seconds, supplied by the caller). Subscribers get the
// join privilege only; publishers additionally get all three publish
// privileges, all expiring with the token.
func (b *Builder) Build(channel string, uid uint32, role Role, issuedAt, expireAfter uint32) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", err
	}
	return b.buildWithSalt(channel, uid, role, issuedAt, expireAfter, salt)
}

// buildWithSalt is the deterministic core: fixed inputs and a fixed salt
// yield a byte-identical token. The salt is part of the signed payload and
// must never change after signing.
func (b *Builder) buildWithSalt(channel string, uid uint32, role Role, issuedAt, expireAfter, salt uint32) (string, error) {
	if channel == "" {
		return "", ErrEmptyChannel
	}
	if expireAfter == 0 {
		return "", ErrInvalidExpire
	}

	expireAt := issuedAt + expireAfter
	svc := NewServiceRTC(channel, strconv.FormatUint(uint64(uid), 10))
	svc.AddPrivilege(PrivJoinChannel, expireAt)
	if role == RolePublisher {
		svc.AddPrivilege(PrivPublishAudio, expireAt)
		svc.AddPrivilege(PrivPublishVideo, expireAt)
		svc.AddPrivilege(PrivPublishData, expireAt)
	}

	payload := &ByteWriter{}
	payload.WriteUint32(issuedAt)
	payload.WriteUint32(expireAfter)
	payload.WriteUint32(salt)
	payload.WriteUint16(1) // service count
	payload.WriteUint16(serviceTypeRTC)
	if err := svc.Pack(payload); err != nil {
		return "", err
	}
	body := payload.Bytes()

	mac := hmac.New(sha256.New, []byte(b.appCert))
	mac.Write(body)
	sig := mac.Sum(nil)

	content := &ByteWriter{}
	content.WriteUint16(uint16(len(sig)))
	content.WriteBytes(sig)
	content.WriteUint32(crc32.ChecksumIEEE(body))
	content.WriteBytes(body)

	deflated, err := deflateBytes(content.Bytes())
	if err != nil {
		return "", fmt.Errorf("compress token: %w", err)
	}
	return Version + b.appID + base64.StdEncoding.EncodeToString(deflated), nil
}

// deflateBytes compresses with raw DEFLATE, no zlib or gzip framing.
func deflateBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(raw); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func randomSalt() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("draw salt: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
