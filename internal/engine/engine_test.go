package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	eng := New(opts)
	if err := eng.ConnectAPIs(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return eng
}

// fullSource returns a source with one entity of every kind, wired so the
// order references the product and the customer.
func fullSource() *fakeSource {
	return &fakeSource{
		collections: []shopify.Collection{{ID: 1, Title: "Sale", Handle: "sale"}},
		products: []shopify.Product{{
			ID: 10, Title: "Beanie", Status: "active",
			Variants: []shopify.Variant{{SKU: "BEANIE-1", Price: "199.00", InventoryQuantity: 3}},
		}},
		customers: []shopify.Customer{{ID: 20, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}},
		orders: []shopify.Order{{
			ID: 30, OrderNumber: 1030, FinancialStatus: "paid",
			Customer: &shopify.Customer{ID: 20},
			LineItems: []shopify.LineItem{
				{Name: "Beanie", SKU: "BEANIE-1", Price: "199.00", Quantity: 1, ProductID: 10, VariantID: 11},
			},
		}},
		discounts: []shopify.Discount{{ID: 40, Code: "SAVE10", ValueType: "percentage", Value: "10"}},
		pages:     []shopify.Page{{ID: 50, Title: "About Us", Handle: "about-us", BodyHTML: "<p>Hi</p>"}},
		blogs:     []shopify.Blog{{ID: 60, Title: "News", Handle: "news"}},
		articles: map[int64][]shopify.Article{
			60: {{ID: 61, BlogID: 60, Title: "First Post", Handle: "first-post", BodyHTML: "<p>x</p>"}},
		},
	}
}

func TestRunLiveCreatesEverything(t *testing.T) {
	src := fullSource()
	tgt := &fakeTarget{}
	cms := &fakeCMS{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, CMS: cms})
	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Success || result.HasErrors || result.HasFailures || result.Stopped {
		t.Fatalf("unexpected result: %+v", result)
	}

	for name, stats := range result.Report.Phases {
		if stats.Attempted != stats.Successful+stats.Failed {
			t.Errorf("%s: attempted %d != successful %d + failed %d",
				name, stats.Attempted, stats.Successful, stats.Failed)
		}
	}

	if len(tgt.createdCategories) != 1 || len(tgt.createdProducts) != 1 ||
		len(tgt.createdCustomers) != 1 || len(tgt.createdOrders) != 1 ||
		len(tgt.createdCoupons) != 1 {
		t.Fatalf("expected one create per phase, got cat=%d prod=%d cust=%d ord=%d coup=%d",
			len(tgt.createdCategories), len(tgt.createdProducts), len(tgt.createdCustomers),
			len(tgt.createdOrders), len(tgt.createdCoupons))
	}
	if len(cms.createdPages) != 1 || len(cms.createdPosts) != 1 {
		t.Fatalf("expected one page and one post, got %d/%d", len(cms.createdPages), len(cms.createdPosts))
	}

	// order must reference the customer created earlier in the run
	order := tgt.createdOrders[0]
	if order.CustomerID != tgt.createdCustomers[0].ID {
		t.Fatalf("order customer id %d, want %d", order.CustomerID, tgt.createdCustomers[0].ID)
	}
	// and its line item must resolve to the created product
	if order.LineItems[0].ProductID != tgt.createdProducts[0].ID {
		t.Fatalf("line item product id %d, want %d", order.LineItems[0].ProductID, tgt.createdProducts[0].ID)
	}

	if result.Report.Phases[PhaseProducts].Variants != 1 {
		t.Fatalf("expected 1 variant counted, got %d", result.Report.Phases[PhaseProducts].Variants)
	}
}

func TestDryRunNeverMutates(t *testing.T) {
	src := fullSource()
	tgt := &fakeTarget{}
	cms := &fakeCMS{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, CMS: cms})
	result, err := eng.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Report.Mode != "dry_run" {
		t.Fatalf("expected dry_run mode, got %s", result.Report.Mode)
	}

	if n := tgt.mutations(); n != 0 {
		t.Fatalf("dry run performed %d mutations on the target", n)
	}
	if len(cms.createdPages) != 0 || len(cms.createdPosts) != 0 {
		t.Fatalf("dry run created CMS content")
	}

	// every item still counts as processed
	for name, stats := range result.Report.Phases {
		if stats.Attempted == 0 {
			t.Errorf("%s: dry run attempted nothing", name)
		}
		if stats.Failed != 0 {
			t.Errorf("%s: dry run recorded failures", name)
		}
	}
}

func TestSecondRunIsIdempotent(t *testing.T) {
	src := fullSource()
	tgt := &fakeTarget{
		existingCategories: []woocommerce.Category{{ID: 1, Name: "Sale", Slug: "sale"}},
		existingProducts:   []woocommerce.Product{{ID: 2, Name: "Beanie", SKU: "BEANIE-1", Images: []woocommerce.Image{{ID: 7}}}},
		existingCustomers:  []woocommerce.Customer{{ID: 3, Email: "jane@example.com"}},
		existingOrders: []woocommerce.Order{{
			ID:       4,
			Status:   "processing",
			MetaData: []woocommerce.MetaData{{Key: "shopify_order_id", Value: "30"}},
		}},
		existingCoupons: []woocommerce.Coupon{{ID: 5, Code: "save10"}},
	}
	cms := &fakeCMS{
		existingPages: []wordpress.Page{{ID: 6, Title: wordpress.Rendered{Rendered: "About Us"}, Slug: "about-us"}},
		existingPosts: []wordpress.Post{{ID: 7, Title: wordpress.Rendered{Rendered: "First Post"}, Slug: "first-post"}},
	}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, CMS: cms})
	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if n := tgt.mutations(); n != 0 {
		t.Fatalf("idempotent rerun performed %d mutations", n)
	}
	if len(cms.createdPages) != 0 || len(cms.createdPosts) != 0 {
		t.Fatalf("idempotent rerun created CMS content")
	}
	for name, stats := range result.Report.Phases {
		if stats.Failed != 0 {
			t.Errorf("%s: rerun recorded failures", name)
		}
		if stats.Attempted != stats.Successful {
			t.Errorf("%s: existing items should all count successful", name)
		}
	}
}

func TestStopMidPhase(t *testing.T) {
	src := &fakeSource{}
	for i := 0; i < 100; i++ {
		src.customers = append(src.customers, shopify.Customer{
			ID:    int64(1000 + i),
			Email: fmt.Sprintf("c%d@example.com", i),
		})
	}
	src.orders = []shopify.Order{{ID: 1, OrderNumber: 1}}

	tgt := &fakeTarget{}
	eng := newTestEngine(t, Options{Source: src, Target: tgt})
	tgt.onCreateCustomer = func(count int) {
		if count == 40 {
			eng.Stop()
		}
	}

	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Stopped {
		t.Fatalf("expected stopped result")
	}
	stats := result.Report.Phases[PhaseCustomers]
	// attempted reflects the discovered total; unreached items count as
	// neither success nor failure
	if stats.Attempted != 100 {
		t.Fatalf("attempted = %d, want 100", stats.Attempted)
	}
	if stats.Successful != 40 {
		t.Fatalf("successful = %d, want 40", stats.Successful)
	}
	if stats.Failed != 0 {
		t.Fatalf("failed = %d, want 0", stats.Failed)
	}

	// later phases must never start
	if src.getOrdersCalls != 0 {
		t.Fatalf("orders phase ran after stop")
	}
	if len(tgt.createdOrders) != 0 {
		t.Fatalf("orders were created after stop")
	}
}

func TestOrderUpdateStripsFinancialLines(t *testing.T) {
	src := &fakeSource{
		orders: []shopify.Order{{
			ID: 30, OrderNumber: 1030, FinancialStatus: "paid",
			LineItems: []shopify.LineItem{
				{Name: "Beanie", SKU: "BEANIE-1", Price: "199.00", Quantity: 2, ProductID: 10},
			},
			ShippingLines: []shopify.ShippingLine{{Title: "Express", Price: "49.00"}},
		}},
	}
	tgt := &fakeTarget{
		existingOrders: []woocommerce.Order{{
			ID:     4,
			Status: "on-hold", // differs from mapped "processing", forces an update
			LineItems: []woocommerce.LineItem{
				{Name: "Beanie", Quantity: 2, Total: "398.00"},
			},
			MetaData: []woocommerce.MetaData{{Key: "shopify_order_id", Value: "30"}},
		}},
	}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, UpdateExistingOrders: true})
	if _, err := eng.Run(context.Background(), false); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(tgt.orderUpdates) != 1 {
		t.Fatalf("expected one order update, got %d", len(tgt.orderUpdates))
	}

	payload, err := json.Marshal(tgt.orderUpdates[0])
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	for _, key := range []string{"line_items", "shipping_lines", "fee_lines"} {
		if strings.Contains(string(payload), key) {
			t.Errorf("update payload must not carry %s: %s", key, payload)
		}
	}
	if len(tgt.createdOrders) != 0 {
		t.Fatalf("existing order must not be recreated")
	}
}

func TestExistingOrderSkippedByDefault(t *testing.T) {
	src := &fakeSource{
		orders: []shopify.Order{{ID: 30, OrderNumber: 1030, FinancialStatus: "paid"}},
	}
	tgt := &fakeTarget{
		existingOrders: []woocommerce.Order{{
			ID:       4,
			Status:   "on-hold",
			MetaData: []woocommerce.MetaData{{Key: "shopify_order_id", Value: "30"}},
		}},
	}

	eng := newTestEngine(t, Options{Source: src, Target: tgt})
	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(tgt.orderUpdates) != 0 || len(tgt.createdOrders) != 0 {
		t.Fatalf("create-once policy violated: updates=%d creates=%d",
			len(tgt.orderUpdates), len(tgt.createdOrders))
	}
	if result.Report.Phases[PhaseOrders].Successful != 1 {
		t.Fatalf("skipped existing order should count successful")
	}
}

func TestOrderAnnotationsFromNoteField(t *testing.T) {
	src := &fakeSource{
		orders: []shopify.Order{{
			ID: 30, OrderNumber: 1030, Note: "call before delivery",
			LineItems: []shopify.LineItem{
				{Name: "Custom prep work", Price: "0.00", Quantity: 1},
			},
		}},
	}
	tgt := &fakeTarget{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt})
	if _, err := eng.Run(context.Background(), false); err != nil {
		t.Fatalf("run: %v", err)
	}

	orderID := tgt.createdOrders[0].ID
	notes := tgt.notes[orderID]
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d: %v", len(notes), notes)
	}
	if !strings.HasPrefix(notes[0], "Shopify Order Note:") {
		t.Errorf("first note should be the order note, got %q", notes[0])
	}
	if !strings.HasPrefix(notes[1], "Job Notes (from Shopify line item):") {
		t.Errorf("second note should be the work note, got %q", notes[1])
	}
	if notes[2] != "Original Shopify order ID: 30" {
		t.Errorf("last note should be the source id, got %q", notes[2])
	}
}

func TestOrderAnnotationsPreferTimeline(t *testing.T) {
	src := &fakeSource{
		orders: []shopify.Order{{ID: 30, OrderNumber: 1030, Note: "fallback note"}},
		events: map[int64][]shopify.Event{
			30: {
				{Verb: "confirmed", Message: "Order confirmed", CreatedAt: "2023-05-01T10:00:00Z"},
				{Verb: "shipped", Message: "Order shipped", CreatedAt: "2023-05-02T10:00:00Z"},
			},
		},
	}
	tgt := &fakeTarget{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt})
	if _, err := eng.Run(context.Background(), false); err != nil {
		t.Fatalf("run: %v", err)
	}

	notes := tgt.notes[tgt.createdOrders[0].ID]
	if !strings.HasPrefix(notes[0], "Shopify Order Timeline:") {
		t.Fatalf("expected timeline note first, got %q", notes[0])
	}
	for _, n := range notes {
		if strings.HasPrefix(n, "Shopify Order Note:") {
			t.Fatalf("timeline and note field must not both be attached: %v", notes)
		}
	}
}

func TestProductImagePipeline(t *testing.T) {
	src := &fakeSource{
		products: []shopify.Product{{
			ID: 10, Title: "Beanie", Status: "active",
			Variants: []shopify.Variant{{SKU: "BEANIE-1", Price: "199.00"}},
			Images:   []shopify.Image{{Src: "https://cdn.shopify.com/beanie.jpg", Alt: "Beanie"}},
		}},
	}
	tgt := &fakeTarget{}
	media := &fakeMedia{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, Media: media})
	if _, err := eng.Run(context.Background(), false); err != nil {
		t.Fatalf("run: %v", err)
	}

	// the create request must not carry images; they attach afterwards
	if len(tgt.createdProducts[0].Images) != 0 {
		t.Fatalf("product created with inline images")
	}
	attached, ok := tgt.imageUpdates[tgt.createdProducts[0].ID]
	if !ok || len(attached) != 1 {
		t.Fatalf("images not attached after create: %v", tgt.imageUpdates)
	}
	if attached[0].ID == 0 {
		t.Fatalf("attached image should reference uploaded media, got %+v", attached[0])
	}
}

func TestCMSFailureDegradesToSkip(t *testing.T) {
	src := fullSource()
	tgt := &fakeTarget{}
	cms := &fakeCMS{connErr: fmt.Errorf("unreachable")}

	eng := New(Options{Source: src, Target: tgt, CMS: cms})
	if err := eng.ConnectAPIs(context.Background()); err != nil {
		t.Fatalf("CMS failure must not fail connect: %v", err)
	}

	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	stats := result.Report.Phases[PhasePages]
	if stats.Attempted != 0 || stats.Failed != 0 {
		t.Fatalf("skipped pages phase should stay zeroed, got %+v", stats)
	}
	if len(cms.createdPages) != 0 {
		t.Fatalf("pages were created through a failed CMS")
	}
	if result.HasFailures {
		t.Fatalf("a skipped pages phase is not a failure")
	}
}

func TestRunRequiresConnect(t *testing.T) {
	eng := New(Options{Source: &fakeSource{}, Target: &fakeTarget{}})
	if _, err := eng.Run(context.Background(), true); err == nil {
		t.Fatalf("expected error when running before ConnectAPIs")
	}
}

func TestReportArtifactWritten(t *testing.T) {
	dir := t.TempDir()
	src := fullSource()
	tgt := &fakeTarget{}

	eng := newTestEngine(t, Options{Source: src, Target: tgt, ReportDir: dir})
	result, err := eng.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "migration_report_dry_run_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one dry_run report artifact, got %v (%v)", matches, err)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var saved Report
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if saved.Mode != "dry_run" {
		t.Fatalf("saved mode %q", saved.Mode)
	}
	if saved.Phases[PhaseProducts].Attempted != result.Report.Phases[PhaseProducts].Attempted {
		t.Fatalf("saved report diverges from the in-memory one")
	}
}

func TestPhaseErrorDoesNotAbortLaterPhases(t *testing.T) {
	src := fullSource()
	tgt := &fakeTarget{createProductErr: fmt.Errorf("boom")}

	eng := newTestEngine(t, Options{Source: src, Target: tgt})
	result, err := eng.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Report.Phases[PhaseProducts].Failed != 1 {
		t.Fatalf("product failure not counted: %+v", result.Report.Phases[PhaseProducts])
	}
	if !result.HasFailures || !result.HasErrors {
		t.Fatalf("failures should surface in the result: %+v", result)
	}
	// later phases still ran
	if len(tgt.createdCustomers) != 1 || len(tgt.createdCoupons) != 1 {
		t.Fatalf("later phases did not run after a product failure")
	}
}
