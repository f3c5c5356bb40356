package db

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Server error codes for duplicate role and user definitions.
const (
	codeDuplicateKey = 11000
	codeRoleExists   = 51002
	codeUserExists   = 51003
)

// CommandRunner runs database commands. *mongo.Database satisfies it; the
// provisioning functions expect the fleet database so that roles and users
// are defined next to the collections they guard.
type CommandRunner interface {
	RunCommand(ctx context.Context, runCommand interface{}, opts ...*options.RunCmdOptions) *mongo.SingleResult
}

// Privilege grants actions on one collection.
type Privilege struct {
	Collection string
	Actions    []string
}

// RoleSpec is a database role to provision.
type RoleSpec struct {
	Name       string
	Privileges []Privilege
}

// UserSpec is a database user to provision.
type UserSpec struct {
	Name     string
	Password string
	Role     string
}

// AccessConfig carries the fleet database name and the passwords of the
// provisioned users.
type AccessConfig struct {
	Database          string
	AnalystPassword   string
	ManagerPassword   string
	LogisticsPassword string
}

// Roles returns the fleet database roles: a read-only analyst, a manager
// with CRUD on vehicles and shipments, and a telemetry writer for devices.
func Roles() []RoleSpec {
	crud := []string{"find", "insert", "update", "remove"}
	return []RoleSpec{
		{
			Name: "DataAnalyst",
			Privileges: []Privilege{
				{Collection: CollVehicles, Actions: []string{"find"}},
				{Collection: CollShipments, Actions: []string{"find"}},
				{Collection: CollTelemetry, Actions: []string{"find"}},
			},
		},
		{
			Name: "FleetManager",
			Privileges: []Privilege{
				{Collection: CollVehicles, Actions: crud},
				{Collection: CollShipments, Actions: crud},
				{Collection: CollTelemetry, Actions: []string{"find"}},
			},
		},
		{
			Name: "TelemetryWriter",
			Privileges: []Privilege{
				{Collection: CollTelemetry, Actions: []string{"find", "insert", "update"}},
			},
		},
	}
}

// Users returns the database users bound to the fleet roles.
func Users(cfg AccessConfig) []UserSpec {
	return []UserSpec{
		{Name: "data_analyst", Password: cfg.AnalystPassword, Role: "DataAnalyst"},
		{Name: "fleet_manager", Password: cfg.ManagerPassword, Role: "FleetManager"},
		{Name: "logistics_app", Password: cfg.LogisticsPassword, Role: "TelemetryWriter"},
	}
}

func isAlreadyExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case codeDuplicateKey, codeRoleExists, codeUserExists:
			return true
		}
	}
	return mongo.IsDuplicateKeyError(err)
}

func createRoleCommand(dbName string, role RoleSpec) bson.D {
	privileges := make(bson.A, len(role.Privileges))
	for i, p := range role.Privileges {
		privileges[i] = bson.D{
			{Key: "resource", Value: bson.D{{Key: "db", Value: dbName}, {Key: "collection", Value: p.Collection}}},
			{Key: "actions", Value: p.Actions},
		}
	}
	return bson.D{
		{Key: "createRole", Value: role.Name},
		{Key: "privileges", Value: privileges},
		{Key: "roles", Value: bson.A{}},
	}
}

func createUserCommand(dbName string, user UserSpec) bson.D {
	role := bson.D{{Key: "role", Value: user.Role}, {Key: "db", Value: dbName}}
	return bson.D{
		{Key: "createUser", Value: user.Name},
		{Key: "pwd", Value: user.Password},
		{Key: "roles", Value: bson.A{role}},
	}
}

// CreateRoles creates the fleet roles. Roles that
// already exist are left untouched.
func CreateRoles(ctx context.Context, db CommandRunner, dbName string) error {
	for _, role := range Roles() {
		err := db.RunCommand(ctx, createRoleCommand(dbName, role)).Err()
		switch {
		case err == nil:
			log.WithField("role", role.Name).Info("Created role")
		case isAlreadyExists(err):
			log.WithField("role", role.Name).Info("Role already exists, skipping")
		default:
			return fmt.Errorf("create role %s: %w", role.Name, err)
		}
	}
	return nil
}

// CreateUsers creates the fleet users. A failure for
// one user is logged and does not stop the others; the returned count is
// the number of users created.
func CreateUsers(ctx context.Context, db CommandRunner, cfg AccessConfig) int {
	created := 0
	for _, user := range Users(cfg) {
		entry := log.WithFields(log.Fields{"user": user.Name, "role": user.Role})
		if user.Password == "" {
			entry.Warn("No password configured, skipping user")
			continue
		}
		err := db.RunCommand(ctx, createUserCommand(cfg.Database, user)).Err()
		switch {
		case err == nil:
			created++
			entry.Info("Created user")
		case isAlreadyExists(err):
			entry.Info("User already exists")
		default:
			entry.WithError(err).Error("Error creating user")
		}
	}
	return created
}

// DBUser is a user as reported by usersInfo.
type DBUser struct {
	User  string   `bson:"user"`
	DB    string   `bson:"db"`
	Roles []DBRole `bson:"roles"`
}

// DBRole is a role reference or definition as reported by usersInfo and
// rolesInfo.
type DBRole struct {
	Role       string   `bson:"role"`
	DB         string   `bson:"db"`
	Privileges []bson.M `bson:"privileges,omitempty"`
}

// Access lists the users and roles that belong to the fleet database.
type Access struct {
	Users []DBUser
	Roles []DBRole
}

// ListUsersAndRoles returns the users and roles defined on the fleet
// database.
func ListUsersAndRoles(ctx context.Context, db CommandRunner, dbName string) (*Access, error) {
	var users struct {
		Users []DBUser `bson:"users"`
	}
	if err := db.RunCommand(ctx, bson.D{{Key: "usersInfo", Value: 1}}).Decode(&users); err != nil {
		return nil, fmt.Errorf("usersInfo: %w", err)
	}
	var roles struct {
		Roles []DBRole `bson:"roles"`
	}
	cmd := bson.D{{Key: "rolesInfo", Value: 1}, {Key: "showPrivileges", Value: true}}
	if err := db.RunCommand(ctx, cmd).Decode(&roles); err != nil {
		return nil, fmt.Errorf("rolesInfo: %w", err)
	}

	access := &Access{Users: []DBUser{}, Roles: []DBRole{}}
	for _, u := range users.Users {
		if u.DB == dbName {
			access.Users = append(access.Users, u)
		}
	}
	for _, r := range roles.Roles {
		if r.DB == dbName {
			access.Roles = append(access.Roles, r)
		}
	}
	return access, nil
}
