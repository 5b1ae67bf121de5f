package engine

import (
	"context"
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

func (e *Engine) migrateCustomers(ctx context.Context, mc *Context, dryRun bool) error {
	customers, err := e.source.GetCustomers(ctx)
	if err != nil {
		return err
	}

	stats := mc.Report.Phases[PhaseCustomers]
	stats.Attempted = len(customers)
	e.logf("INFO", "Found %d customers to migrate", len(customers))

	for i := range customers {
		if e.isStopped() {
			break
		}
		c := &customers[i]
		sourceID := fmt.Sprintf("%d", c.ID)

		success := false
		var errMsg string

		mapped, err := mapper.MapCustomer(c, mc.UsedPlaceholderEmails)
		if err != nil {
			errMsg = fmt.Sprintf("Customer %d mapping failed: %v", c.ID, err)
		} else if existing := findExistingCustomer(mc, mapped.Email); existing != nil {
			mc.Mappings.Customers[sourceID] = existing.ID
			e.logf("INFO", "[%s] Skipped existing customer: %s", modeTag(dryRun), mapped.Email)
			success = true
		} else if dryRun {
			e.logf("INFO", "[DRY RUN] Would create customer: %s", mapped.Email)
			success = true
		} else {
			created, err := e.target.CreateCustomer(ctx, mapped)
			if err != nil {
				errMsg = fmt.Sprintf("Failed to create customer %s: %v", mapped.Email, err)
			} else {
				mc.Mappings.Customers[sourceID] = created.ID
				e.logf("INFO", "Created customer: %s", mapped.Email)
				success = true
			}
		}

		// single counting point
		if success {
			stats.Successful++
		} else {
			stats.Failed++
			if errMsg != "" {
				e.logf("ERROR", "%s", errMsg)
				mc.Report.addError(errMsg)
			}
		}
	}

	e.logf("INFO", "Customers: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)
	return nil
}

func findExistingCustomer(mc *Context, email string) *woocommerce.Customer {
	if email == "" {
		return nil
	}
	for i := range mc.ExistingCustomers {
		if mc.ExistingCustomers[i].Email == email {
			return &mc.ExistingCustomers[i]
		}
	}
	return nil
}
