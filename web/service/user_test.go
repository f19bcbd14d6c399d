package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dailydiet/daily-diet/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	users := NewUserService(openTestDB(t))
	ctx := context.Background()

	u, err := users.Register(ctx, "  ana  ", " secret ")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.UserName)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotEqual(t, "secret", u.Password)

	_, err = users.Register(ctx, "ana", "other")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = users.Register(ctx, "   ", "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = users.Register(ctx, strings.Repeat("a", 81), "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = users.Register(ctx, "bo", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterConcurrentSameName(t *testing.T) {
	users := NewUserService(openTestDB(t))

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = users.Register(context.Background(), "same", "secret")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestCheckUser(t *testing.T) {
	users := NewUserService(openTestDB(t))
	ctx := context.Background()
	mustRegister(t, users, "ana")

	u, err := users.CheckUser(ctx, "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.UserName)

	_, wrongPassword := users.CheckUser(ctx, "ana", "nope")
	_, unknownUser := users.CheckUser(ctx, "nobody", "secret")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestPrincipalGone(t *testing.T) {
	users := NewUserService(openTestDB(t))

	_, err := users.Principal(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetUserVisibility(t *testing.T) {
	users := NewUserService(openTestDB(t))
	ctx := context.Background()
	ana := mustRegister(t, users, "ana")
	bo := mustRegister(t, users, "bo")
	admin := mustAdmin(t, users, "root")

	got, err := users.GetUser(ctx, ana, ana.Id)
	require.NoError(t, err)
	assert.Equal(t, ana.Id, got.Id)

	_, err = users.GetUser(ctx, ana, bo.Id)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = users.GetUser(ctx, admin, bo.Id)
	require.NoError(t, err)
	assert.Equal(t, "bo", got.UserName)

	_, err = users.GetUser(ctx, admin, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersAdminOnly(t *testing.T) {
	users := NewUserService(openTestDB(t))
	ctx := context.Background()
	ana := mustRegister(t, users, "ana")
	admin := mustAdmin(t, users, "root")

	_, err := users.ListUsers(ctx, ana)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := users.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ana", list[0].UserName)
	assert.Equal(t, "root", list[1].UserName)
}

func TestDeleteUser(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)
	meals := NewMealService(db, nil)
	ctx := context.Background()
	ana := mustRegister(t, users, "ana")
	bo := mustRegister(t, users, "bo")
	admin := mustAdmin(t, users, "root")

	_, err := meals.CreateMeal(ctx, ana, fullPatch(t))
	require.NoError(t, err)

	_, err = users.DeleteUser(ctx, bo, ana.Id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = users.DeleteUser(ctx, admin, admin.Id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = users.DeleteUser(ctx, admin, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := users.DeleteUser(ctx, admin, ana.Id)
	require.NoError(t, err)
	assert.Equal(t, "ana", deleted.UserName)

	var count int64
	require.NoError(t, db.Model(&model.Meal{}).Where("user_id = ?", ana.Id).Count(&count).Error)
	assert.Zero(t, count)

	_, err = users.GetUser(ctx, admin, ana.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	users := NewUserService(openTestDB(t))
	ctx := context.Background()
	ana := mustRegister(t, users, "ana")

	u, created, err := users.EnsureAdmin(ctx, "ana", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ana.Id, u.Id)
	assert.True(t, u.IsAdmin())

	// password unchanged when none given
	_, err = users.CheckUser(ctx, "ana", "secret")
	assert.NoError(t, err)

	_, _, err = users.EnsureAdmin(ctx, "newbie", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	u, created, err = users.EnsureAdmin(ctx, "root", "toor")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(notFound("meal")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "meal not found", notFound("meal").Error())
	assert.Equal(t, "list meals: boom", internal("list meals", errors.New("boom")).Error())
}
