package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeRunner struct {
	commands []bson.D
	errs     map[string]error
	replies  map[string]interface{}
}

func (f *fakeRunner) RunCommand(ctx context.Context, cmd interface{}, opts ...*options.RunCmdOptions) *mongo.SingleResult {
	d := cmd.(bson.D)
	f.commands = append(f.commands, d)
	key := d[0].Key + ":" + toString(d[0].Value)
	reply, ok := f.replies[d[0].Key]
	if !ok {
		reply = bson.D{{Key: "ok", Value: 1}}
	}
	return mongo.NewSingleResultFromDocument(reply, f.errs[key], nil)
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestCreateRoles(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"createRole:DataAnalyst": mongo.CommandError{Code: codeRoleExists, Message: "Role already exists"},
	}}

	require.NoError(t, CreateRoles(context.Background(), runner, "fleetTracking"))
	require.Len(t, runner.commands, 3)

	manager := runner.commands[1]
	assert.Equal(t, "createRole", manager[0].Key)
	assert.Equal(t, "FleetManager", manager[0].Value)
	privileges := manager[1].Value.(bson.A)
	require.Len(t, privileges, 3)
	first := privileges[0].(bson.D)
	assert.Equal(t, bson.D{{Key: "db", Value: "fleetTracking"}, {Key: "collection", Value: "vehicles"}}, first[0].Value)
	assert.Equal(t, []string{"find", "insert", "update", "remove"}, first[1].Value)
}

func TestCreateRoles_Failure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"createRole:FleetManager": mongo.CommandError{Code: 13, Message: "not authorized"},
	}}

	err := CreateRoles(context.Background(), runner, "fleetTracking")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FleetManager")
	assert.Len(t, runner.commands, 2)
}

func TestCreateUsers(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"createUser:data_analyst":  mongo.CommandError{Code: codeUserExists, Message: "User already exists"},
		"createUser:fleet_manager": errors.New("network error"),
	}}

	created := CreateUsers(context.Background(), runner, AccessConfig{
		Database:          "fleetTracking",
		AnalystPassword:   "a",
		ManagerPassword:   "m",
		LogisticsPassword: "l",
	})
	assert.Equal(t, 1, created)
	require.Len(t, runner.commands, 3, "a failed user does not stop the others")

	logistics := runner.commands[2]
	assert.Equal(t, "logistics_app", logistics[0].Value)
	assert.Equal(t, "l", logistics[1].Value)
	assert.Equal(t, bson.A{bson.D{{Key: "role", Value: "TelemetryWriter"}, {Key: "db", Value: "fleetTracking"}}}, logistics[2].Value)
}

func TestCreateUsers_SkipsMissingPassword(t *testing.T) {
	runner := &fakeRunner{}
	created := CreateUsers(context.Background(), runner, AccessConfig{Database: "fleetTracking", ManagerPassword: "m"})
	assert.Equal(t, 1, created)
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "fleet_manager", runner.commands[0][0].Value)
}

func TestListUsersAndRoles(t *testing.T) {
	runner := &fakeRunner{replies: map[string]interface{}{
		"usersInfo": bson.D{{Key: "users", Value: bson.A{
			bson.D{{Key: "user", Value: "data_analyst"}, {Key: "db", Value: "fleetTracking"}, {Key: "roles", Value: bson.A{
				bson.D{{Key: "role", Value: "DataAnalyst"}, {Key: "db", Value: "fleetTracking"}},
			}}},
			bson.D{{Key: "user", Value: "other"}, {Key: "db", Value: "billing"}},
		}}, {Key: "ok", Value: 1}},
		"rolesInfo": bson.D{{Key: "roles", Value: bson.A{
			bson.D{{Key: "role", Value: "DataAnalyst"}, {Key: "db", Value: "fleetTracking"}, {Key: "privileges", Value: bson.A{
				bson.M{"actions": bson.A{"find"}},
				bson.M{"actions": bson.A{"find"}},
				bson.M{"actions": bson.A{"find"}},
			}}},
		}}, {Key: "ok", Value: 1}},
	}}

	access, err := ListUsersAndRoles(context.Background(), runner, "fleetTracking")
	require.NoError(t, err)
	require.Len(t, access.Users, 1)
	assert.Equal(t, "data_analyst", access.Users[0].User)
	assert.Equal(t, "DataAnalyst", access.Users[0].Roles[0].Role)
	require.Len(t, access.Roles, 1)
	assert.Len(t, access.Roles[0].Privileges, 3)
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, isAlreadyExists(mongo.CommandError{Code: codeRoleExists}))
	assert.True(t, isAlreadyExists(mongo.CommandError{Code: codeUserExists}))
	assert.True(t, isAlreadyExists(mongo.CommandError{Code: codeDuplicateKey}))
	assert.False(t, isAlreadyExists(mongo.CommandError{Code: 13}))
	assert.False(t, isAlreadyExists(errors.New("boom")))
}
