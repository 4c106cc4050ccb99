package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zheliyou/internal/backend"
	"zheliyou/internal/backend/memstore"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
)

func TestCreateUserProfile(t *testing.T) {
	fb := memstore.New()
	svc := UserService{Backend: fb}

	res := svc.CreateUserProfile(context.Background(), models.UserProfile{ID: "u1", Username: "ana", Interests: []string{"hiking"}})
	p, ok := res.Value()
	require.True(t, ok, res.Message())
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "ana", p.Username)
	assert.Equal(t, []string{"hiking"}, p.Interests)

	dup := svc.CreateUserProfile(context.Background(), models.UserProfile{ID: "u1", Username: "ana"})
	assert.Equal(t, "duplicate key value violates unique constraint", dup.Message())
}

func TestCreateUserProfileGoesStraightToBackend(t *testing.T) {
	fb := memstore.New()
	svc := UserService{Backend: fb}
	res := svc.CreateUserProfile(context.Background(), models.UserProfile{ID: "u2"})
	require.True(t, res.OK(), res.Message())
	assert.Equal(t, []string{"insert user_profiles"}, fb.Calls())
}

func TestGetUserProfileMissingRow(t *testing.T) {
	svc := UserService{Backend: memstore.New()}
	res := svc.GetUserProfile(context.Background(), "ghost")
	assert.False(t, res.OK())
	assert.Equal(t, backend.MsgSingleRow, res.Message())
}

func TestUpdateUserProfile(t *testing.T) {
	fb := memstore.New()
	fb.Seed(domain.TableUserProfiles, models.UserProfile{ID: "u1", Username: "ana"})
	svc := UserService{Backend: fb}

	res := svc.UpdateUserProfile(context.Background(), "u1", map[string]any{"bio": "coffee & trains"})
	p, ok := res.Value()
	require.True(t, ok, res.Message())
	assert.Equal(t, "coffee & trains", p.Bio)
	assert.Equal(t, "ana", p.Username)

	empty := svc.UpdateUserProfile(context.Background(), "u1", nil)
	assert.Equal(t, "updates: must not be empty", empty.Message())
}

func TestGetAllUsersExcludesCaller(t *testing.T) {
	fb := memstore.New()
	fb.Seed(domain.TableUserProfiles,
		models.UserProfile{ID: "u1", Username: "ana"},
		models.UserProfile{ID: "u2", Username: "bo"},
		models.UserProfile{ID: "u3", Username: "cy"},
	)
	svc := UserService{Backend: fb}

	all, ok := svc.GetAllUsers(context.Background(), "").Value()
	require.True(t, ok)
	assert.Len(t, all, 3)

	others, ok := svc.GetAllUsers(context.Background(), "u2").Value()
	require.True(t, ok)
	require.Len(t, others, 2)
	for _, p := range others {
		assert.NotEqual(t, "u2", p.ID)
	}
	assert.Equal(t, []domain.Filter{domain.Neq("id", "u2")}, fb.LastQuery().Filters)
}

func TestUpdateUserProfileSplitsInterests(t *testing.T) {
	fb := memstore.New()
	fb.Seed(domain.TableUserProfiles, models.UserProfile{ID: "u1", Username: "ana"})

	p, ok := UserService{Backend: fb}.UpdateUserProfile(context.Background(), "u1", map[string]any{"interests": "Hiking, Tea; museums"}).Value()
	require.True(t, ok)
	assert.Equal(t, []string{"hiking", "tea", "museums"}, p.Interests)
}
