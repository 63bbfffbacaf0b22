package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier defines the billing tier of a plan.
type PlanTier string

const (
	PlanTierFree       PlanTier = "FREE"
	PlanTierPro        PlanTier = "PRO"
	PlanTierEnterprise PlanTier = "ENTERPRISE"
)

// Plan is a billing plan a user can subscribe to.
type Plan struct {
	ID           uuid.UUID `json:"id"`
	Tier         PlanTier  `json:"tier"`
	Name         string    `json:"name"`
	PriceCents   int       `json:"price_cents"`
	BillingCycle string    `json:"billing_cycle"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlanFeature is a feature flag or numeric limit attached to a plan.
type PlanFeature struct {
	ID        uuid.UUID `json:"id"`
	PlanID    uuid.UUID `json:"plan_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
