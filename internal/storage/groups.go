// Package storage persists chat groups in BadgerDB. Groups are the only
// durable state in the system; everything the signaling core knows is
// rebuilt from live connections.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/domain"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

const (
	groupPrefix = "group:"
	tokenPrefix = "token:"
)

type GroupStore struct {
	db *badger.DB
}

func Open(path string) (*GroupStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &GroupStore{db: db}, nil
}

func (s *GroupStore) Close() error {
	return s.db.Close()
}

// CreateGroup makes a new group with the creator as first member and a
// fresh invite token.
func (s *GroupStore) CreateGroup(name string, creator domain.UserID) (*domain.ChatGroup, error) {
	group := &domain.ChatGroup{
		ID:        domain.GroupID(uuid.NewString()),
		Name:      name,
		Token:     uuid.NewString(),
		Members:   map[domain.UserID]bool{creator: true},
		CreatedAt: time.Now(),
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := putGroup(txn, group); err != nil {
			return err
		}
		return txn.Set(tokenKey(group.Token), []byte(group.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	log.Info().Str("module", "storage.groups").Str("group", string(group.ID)).Str("name", name).Msg("group created")
	return group, nil
}

// JoinGroup resolves the invite token and adds the user to the group.
func (s *GroupStore) JoinGroup(token string, user domain.UserID) (*domain.ChatGroup, error) {
	var group *domain.ChatGroup
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(token))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		var id domain.GroupID
		if err := item.Value(func(val []byte) error {
			id = domain.GroupID(val)
			return nil
		}); err != nil {
			return err
		}
		group, err = getGroup(txn, id)
		if err != nil {
			return err
		}
		group.AddMember(user)
		return putGroup(txn, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// LeaveGroup removes the user; the group is deleted when its last member
// leaves. Returns false for an unknown group id.
func (s *GroupStore) LeaveGroup(id domain.GroupID, user domain.UserID) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		group, err := getGroup(txn, id)
		if err != nil {
			return err
		}
		group.RemoveMember(user)
		if len(group.Members) == 0 {
			if err := txn.Delete(groupKey(id)); err != nil {
				return err
			}
			return txn.Delete(tokenKey(group.Token))
		}
		return putGroup(txn, group)
	})
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("leave group: %w", err)
	}
	return true, nil
}

// IsMember is the chat relay's authorization check.
func (s *GroupStore) IsMember(id domain.GroupID, user domain.UserID) bool {
	var member bool
	err := s.db.View(func(txn *badger.Txn) error {
		group, err := getGroup(txn, id)
		if err != nil {
			return err
		}
		member = group.HasMember(user)
		return nil
	})
	if err != nil && !errors.Is(err, ErrGroupNotFound) {
		log.Error().Err(err).Str("module", "storage.groups").Str("group", string(id)).Msg("membership check")
	}
	return member
}

func (s *GroupStore) GetGroup(id domain.GroupID) (*domain.ChatGroup, error) {
	var group *domain.ChatGroup
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = getGroup(txn, id)
		return err
	})
	return group, err
}

func groupKey(id domain.GroupID) []byte { return []byte(groupPrefix + string(id)) }
func tokenKey(token string) []byte      { return []byte(tokenPrefix + token) }

func getGroup(txn *badger.Txn, id domain.GroupID) (*domain.ChatGroup, error) {
	item, err := txn.Get(groupKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	var group domain.ChatGroup
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &group)
	}); err != nil {
		return nil, err
	}
	return &group, nil
}

func putGroup(txn *badger.Txn, group *domain.ChatGroup) error {
	b, err := json.Marshal(group)
	if err != nil {
		return err
	}
	return txn.Set(groupKey(group.ID), b)
}
