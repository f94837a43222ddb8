package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

func setupOracle(t *testing.T) (database.Database, *Oracle) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, NewOracle(db)
}

func TestOracleRoleChecks(t *testing.T) {
	db, oracle := setupOracle(t)
	ctx := context.Background()

	owner := &database.User{Email: "owner@example.com", Password: "x"}
	manager := &database.User{Email: "manager@example.com", Password: "x"}
	staff := &database.User{Email: "staff@example.com", Password: "x"}
	outsider := &database.User{Email: "outsider@example.com", Password: "x"}
	for _, u := range []*database.User{owner, manager, staff, outsider} {
		require.NoError(t, db.CreateUser(ctx, u))
	}

	channel := &database.Channel{Name: "store", OwnerID: owner.ID}
	require.NoError(t, db.CreateChannel(ctx, channel))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: manager.ID, Role: cnst.RoleManager}))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: staff.ID, Role: cnst.RoleStaff}))

	assert.NoError(t, oracle.RequireMember(ctx, channel.ID, staff.ID))
	assert.ErrorIs(t, oracle.RequireMember(ctx, channel.ID, outsider.ID), errorx.ErrForbidden)

	assert.NoError(t, oracle.RequireManager(ctx, channel.ID, owner.ID))
	assert.NoError(t, oracle.RequireManager(ctx, channel.ID, manager.ID))
	assert.ErrorIs(t, oracle.RequireManager(ctx, channel.ID, staff.ID), errorx.ErrForbidden)

	assert.NoError(t, oracle.RequireOwner(ctx, channel.ID, owner.ID))
	assert.ErrorIs(t, oracle.RequireOwner(ctx, channel.ID, manager.ID), errorx.ErrForbidden)

	role, err := oracle.MemberRole(ctx, channel.ID, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, cnst.RoleManager, role)
}

func TestOracleCreatorAndTopicChecks(t *testing.T) {
	db, oracle := setupOracle(t)
	ctx := context.Background()

	owner := &database.User{Email: "owner@example.com", Password: "x"}
	staff := &database.User{Email: "staff@example.com", Password: "x"}
	other := &database.User{Email: "other@example.com", Password: "x"}
	for _, u := range []*database.User{owner, staff, other} {
		require.NoError(t, db.CreateUser(ctx, u))
	}

	channel := &database.Channel{Name: "store", OwnerID: owner.ID}
	require.NoError(t, db.CreateChannel(ctx, channel))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: staff.ID, Role: cnst.RoleStaff}))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: other.ID, Role: cnst.RoleStaff}))

	assert.NoError(t, oracle.RequireCreator(staff.ID, staff.ID))
	assert.ErrorIs(t, oracle.RequireCreator(other.ID, staff.ID), errorx.ErrForbidden)

	// topic creator may manage even as staff; unrelated staff may not
	assert.NoError(t, oracle.CanManageTopic(ctx, channel.ID, staff.ID, staff.ID))
	assert.NoError(t, oracle.CanManageTopic(ctx, channel.ID, owner.ID, staff.ID))
	assert.ErrorIs(t, oracle.CanManageTopic(ctx, channel.ID, other.ID, staff.ID), errorx.ErrForbidden)
}
