package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepo(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewFollowRepo(mock)
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	// Following twice inserts nothing the second time
	mock.ExpectExec(regexp.QuoteMeta(followSQL)).WithArgs(me, other).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(followSQL)).WithArgs(me, other).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	require.NoError(t, repo.Follow(ctx, me, other))
	require.NoError(t, repo.Follow(ctx, me, other))

	mock.ExpectQuery(regexp.QuoteMeta(listFollowingSQL)).WithArgs(me).
		WillReturnRows(pgxmock.NewRows([]string{"followee_id"}).AddRow(other))
	following, err := repo.ListFollowing(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{other}, following)

	mock.ExpectQuery(regexp.QuoteMeta(listFollowersSQL)).WithArgs(me).
		WillReturnRows(pgxmock.NewRows([]string{"follower_id"}))
	followers, err := repo.ListFollowers(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, followers)
	assert.NotNil(t, followers)

	mock.ExpectExec(regexp.QuoteMeta(unfollowSQL)).WithArgs(me, other).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Unfollow(ctx, me, other))

	assert.NoError(t, mock.ExpectationsWereMet())
}
