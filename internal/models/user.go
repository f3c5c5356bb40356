package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the application role carried in a user's token. The roles mirror
// the database roles provisioned for the fleet database.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleFleetManager Role = "fleet_manager"
	RoleDataAnalyst  Role = "data_analyst"
	RoleLogisticsApp Role = "logistics_app"
)

// Permissions checked by the HTTP layer.
const (
	PermViewVehicles    = "view_vehicles"
	PermViewShipments   = "view_shipments"
	PermViewTelemetry   = "view_telemetry"
	PermViewReports     = "view_reports"
	PermManageVehicles  = "manage_vehicles"
	PermManageShipments = "manage_shipments"
	PermIngestTelemetry = "ingest_telemetry"
	PermManageUsers     = "manage_users"
)

// User is an account allowed to use the dashboard API.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// LoginResponse is returned by login and registration.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims are the fields extracted from a validated token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

var rolePermissions = map[Role][]string{
	RoleFleetManager: {
		PermViewVehicles, PermViewShipments, PermViewTelemetry, PermViewReports,
		PermManageVehicles, PermManageShipments,
	},
	RoleDataAnalyst: {
		PermViewVehicles, PermViewShipments, PermViewTelemetry, PermViewReports,
	},
	RoleLogisticsApp: {
		PermViewTelemetry, PermIngestTelemetry,
	},
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	if role == RoleAdmin {
		return true
	}
	_, ok := rolePermissions[role]
	return ok
}

// Allows reports whether the role grants the permission.
func (r Role) Allows(permission string) bool {
	if r == RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	return u.Role.Allows(action)
}
