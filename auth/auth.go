// Package auth keeps credentials of the single user in a file with content:
//
//	username/password/recoverykey
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/log"
)

const sep = "/"

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrBadRecoveryKey = errors.New("invalid recovery key")
	ErrNotRegistered  = errors.New("no user registered")
	ErrInvalidField   = errors.New("invalid credential field")
)

// Session is created by a successful Login
type Session struct {
	User       string
	LoggedInAt time.Time
}

type credentials struct {
	user        string
	password    string
	recoveryKey string
}

func (c *credentials) marshal() []byte {
	return []byte(c.user + sep + c.password + sep + c.recoveryKey)
}

func validateField(name, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidField, name)
	}
	if strings.ContainsAny(v, sep+"\r\n") {
		return fmt.Errorf("%w: %s can't contain '/' or newlines", ErrInvalidField, name)
	}
	return nil
}

func readCredentials(path string) (*credentials, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	s := strings.TrimRight(string(d), "\r\n")
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return nil, fmt.Errorf("credentials file '%s' is malformed", path)
	}
	return &credentials{
		user:        parts[0],
		password:    parts[1],
		recoveryKey: parts[2],
	}, nil
}

func writeCredentials(path string, c *credentials) error {
	return linestore.WriteFileAtomic(path, c.marshal())
}

// Register overwrites credentials file at path
func Register(path, user, password, recoveryKey string) error {
	c := &credentials{
		user:        user,
		password:    password,
		recoveryKey: recoveryKey,
	}
	if err := validateField("username", user); err != nil {
		return err
	}
	if err := validateField("password", password); err != nil {
		return err
	}
	if err := validateField("recovery key", recoveryKey); err != nil {
		return err
	}
	if err := writeCredentials(path, c); err != nil {
		return err
	}
	log.Event("user.registered", "user", user)
	return nil
}

// Login checks user and password against credentials file at path
func Login(path, user, password string) (*Session, error) {
	c, err := readCredentials(path)
	if err != nil {
		return nil, err
	}
	if c.user != user || c.password != password {
		log.Event("user.login.failed", "user", user)
		return nil, ErrBadCredentials
	}
	log.Event("user.login", "user", user)
	return &Session{
		User:       user,
		LoggedInAt: time.Now(),
	}, nil
}

// ChangePassword sets a new password if recoveryKey matches
func ChangePassword(path, recoveryKey, newPassword string) error {
	if err := validateField("password", newPassword); err != nil {
		return err
	}
	c, err := readCredentials(path)
	if err != nil {
		return err
	}
	if c.recoveryKey != recoveryKey {
		return ErrBadRecoveryKey
	}
	c.password = newPassword
	if err = writeCredentials(path, c); err != nil {
		return err
	}
	log.Event("user.password.changed", "user", c.user)
	return nil
}
