package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_DeleteAndCheck(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLikeRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM "likes" WHERE post_id = \$1 AND user_id = \$2`).
		WithArgs("p1", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.DeleteLike(ctx, "p1", 2), models.ErrNotFound)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE post_id = \$1 AND user_id = \$2`).
		WithArgs("p1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	liked, err := repo.HasUserLikedPost(ctx, "p1", 2)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresFollowRepository(db)

	mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.DeleteFollow(context.Background(), 2, 1), models.ErrNotFound)

	mock.ExpectExec(`DELETE FROM "follows"`).WillReturnError(errors.New("deadlock"))
	err := repo.DeleteFollow(context.Background(), 2, 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestUserRepository_Lookups(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))
	_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, models.ErrNotFound)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "username", "email"}).
			AddRow(7, "Olivia Owner", "olivia", "olivia@example.com"))
	u, err := repo.GetUserByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Olivia Owner", u.DisplayName())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCommentRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "comments" WHERE "comments"."id" = \$1 AND "comments"."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "content"}))
	c, err := repo.GetCommentByID(context.Background(), 99)
	assert.Nil(t, c)
	require.ErrorIs(t, err, models.ErrNotFound)
}
