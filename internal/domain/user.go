// Package domain contains entities without logic, just meta-data
package domain

import "errors"

const MaxNameLen = 64

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

type UserID string

// User is a connected identity as announced by the client.
// The id is trusted as given; there is no authentication here.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

func (u *User) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	u.Name = name
	return nil
}
