package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/cueroom/go/internal/dbconfig"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// Built-in plan catalog. Tiers are stable identifiers, so seeding upserts
// by tier and is safe to re-run.
var plans = []struct {
	Tier         models.PlanTier
	Name         string
	PriceCents   int
	BillingCycle string
	Features     map[string]string
}{
	{
		Tier:         models.PlanTierFree,
		Name:         "Free",
		PriceCents:   0,
		BillingCycle: "monthly",
		Features: map[string]string{
			"max_rooms":            "1",
			"max_timers_per_room":  "3",
			"max_viewers_per_room": "5",
			"custom_displays":      "false",
		},
	},
	{
		Tier:         models.PlanTierPro,
		Name:         "Pro",
		PriceCents:   1200,
		BillingCycle: "monthly",
		Features: map[string]string{
			"max_rooms":            "10",
			"max_timers_per_room":  "50",
			"max_viewers_per_room": "100",
			"custom_displays":      "true",
		},
	},
	{
		Tier:         models.PlanTierEnterprise,
		Name:         "Enterprise",
		PriceCents:   9900,
		BillingCycle: "monthly",
		Features: map[string]string{
			"max_rooms":            "unlimited",
			"max_timers_per_room":  "unlimited",
			"max_viewers_per_room": "unlimited",
			"custom_displays":      "true",
		},
	},
}

func main() {
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var (
		planCount    int
		featureCount int
		errs         int
	)

	for _, p := range plans {
		var planID uuid.UUID
		err := pool.QueryRow(context.Background(), `
            INSERT INTO plans (id, tier, name, price_cents, billing_cycle)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (tier) DO UPDATE SET
              name = EXCLUDED.name,
              price_cents = EXCLUDED.price_cents,
              billing_cycle = EXCLUDED.billing_cycle
            RETURNING id
        `, uuid.New(), p.Tier, p.Name, p.PriceCents, p.BillingCycle).Scan(&planID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting plan %s: %v\n", p.Tier, err)
			errs++
			continue
		}
		planCount++

		for key, value := range p.Features {
			_, err := pool.Exec(context.Background(), `
                INSERT INTO plan_features (id, plan_id, key, value)
                VALUES ($1, $2, $3, $4)
                ON CONFLICT (plan_id, key) DO UPDATE SET value = EXCLUDED.value
            `, uuid.New(), planID, key, value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error upserting feature %s/%s: %v\n", p.Tier, key, err)
				errs++
				continue
			}
			featureCount++
		}
	}

	fmt.Printf("Plans seed complete: %d plans, %d features, %d errors\n",
		planCount, featureCount, errs)
	if errs > 0 {
		os.Exit(1)
	}
}
