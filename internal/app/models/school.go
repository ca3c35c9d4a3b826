package models

import "time"

// School represents a tenant. All operational data is scoped to a school.
type School struct {
	ID          int64  `json:"id" db:"id" example:"1"`
	Name        string `json:"name" db:"name" example:"Maple Leaf Academy"`
	Code        string `json:"code" db:"code" example:"MAPLE"`
	Email       string `json:"email" db:"email" example:"office@mapleleaf.ca"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number" example:"+1-555-0100"`
	Website     *string `json:"website,omitempty" db:"website"`

	// Address
	StreetAddress string `json:"streetAddress" db:"street_address"`
	City          string `json:"city" db:"city"`
	State         string `json:"state" db:"state"`
	PostalCode    string `json:"postalCode" db:"postal_code"`
	Country       string `json:"country" db:"country" example:"Canada"`

	// Admin/Contact
	PrincipalName *string `json:"principalName,omitempty" db:"principal_name"`
	AdminEmail    *string `json:"adminEmail,omitempty" db:"admin_email"`

	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relation (populated when needed)
	Subscription *Subscription `json:"subscription,omitempty"`
}

// SubscriptionPlan is the billing tier of a school subscription.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanBasic      SubscriptionPlan = "basic"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// SubscriptionStatus is the lifecycle status of a school subscription.
// Only schools with an active subscription are eligible for login and
// tenant selection.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription holds billing state for a school, one-to-one.
type Subscription struct {
	ID       int64              `json:"id" db:"id"`
	SchoolID int64              `json:"schoolId" db:"school_id"`
	Plan     SubscriptionPlan   `json:"plan" db:"plan" example:"pro"`
	Status   SubscriptionStatus `json:"status" db:"status" example:"active"`

	// 0 = unlimited
	MaxStudents int `json:"maxStudents" db:"max_students"`
	MaxUsers    int `json:"maxUsers" db:"max_users"`

	StartDate   time.Time  `json:"startDate" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	RenewalDate *time.Time `json:"renewalDate,omitempty" db:"renewal_date"`

	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
