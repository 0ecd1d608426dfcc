package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *GroupStore {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestCreateGroupMakesCreatorMember(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	group, err := store.CreateGroup("gophers", "u1")
	req.NoError(err)
	req.NotEmpty(group.ID)
	req.NotEmpty(group.Token)
	req.True(store.IsMember(group.ID, "u1"))
	req.False(store.IsMember(group.ID, "u2"))
}

func TestJoinGroupByToken(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	group, err := store.CreateGroup("gophers", "u1")
	req.NoError(err)

	joined, err := store.JoinGroup(group.Token, "u2")
	req.NoError(err)
	req.Equal(group.ID, joined.ID)
	req.Equal("gophers", joined.Name)
	req.True(store.IsMember(group.ID, "u2"))
}

func TestJoinGroupInvalidToken(t *testing.T) {
	store := openTestStore(t)
	_, err := store.JoinGroup("bogus", "u2")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLeaveGroup(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	group, err := store.CreateGroup("gophers", "u1")
	req.NoError(err)
	_, err = store.JoinGroup(group.Token, "u2")
	req.NoError(err)

	left, err := store.LeaveGroup(group.ID, "u2")
	req.NoError(err)
	req.True(left)
	req.False(store.IsMember(group.ID, "u2"))
	req.True(store.IsMember(group.ID, "u1"))
}

func TestLeaveGroupUnknownID(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	left, err := store.LeaveGroup("nope", "u1")
	req.NoError(err)
	req.False(left)
}

func TestLastMemberLeavingDeletesGroup(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	group, err := store.CreateGroup("gophers", "u1")
	req.NoError(err)

	left, err := store.LeaveGroup(group.ID, "u1")
	req.NoError(err)
	req.True(left)

	_, err = store.GetGroup(group.ID)
	req.ErrorIs(err, ErrGroupNotFound)
	// The invite token dies with the group.
	_, err = store.JoinGroup(group.Token, "u2")
	req.ErrorIs(err, ErrInvalidToken)
}

func TestGroupsSurviveReopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	store, err := Open(dir)
	req.NoError(err)
	group, err := store.CreateGroup("gophers", "u1")
	req.NoError(err)
	req.NoError(store.Close())

	reopened, err := Open(dir)
	req.NoError(err)
	defer func() { req.NoError(reopened.Close()) }()
	req.True(reopened.IsMember(group.ID, "u1"))

	fetched, err := reopened.GetGroup(group.ID)
	req.NoError(err)
	req.Equal("gophers", fetched.Name)
}
