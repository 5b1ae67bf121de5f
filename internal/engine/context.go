package engine

import (
	"time"

	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// Phase names, in execution order. Orders depend on the customer and product
// ID mappings built by earlier phases, so the order is a correctness
// requirement.
const (
	PhaseCategories = "categories"
	PhaseProducts   = "products"
	PhaseCustomers  = "customers"
	PhaseOrders     = "orders"
	PhaseCoupons    = "coupons"
	PhasePages      = "pages"
)

var phaseOrder = []string{
	PhaseCategories,
	PhaseProducts,
	PhaseCustomers,
	PhaseOrders,
	PhaseCoupons,
	PhasePages,
}

// PhaseStats carries the per-phase tallies. Each phase writes its final
// counts exactly once; attempted equals successful+failed for phases that
// ran to completion, while a cancelled phase leaves unreached items counted
// as neither.
type PhaseStats struct {
	Attempted  int `json:"attempted"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Variants   int `json:"variants,omitempty"`
}

// Report is the structured outcome of one run. It is mutated during the run
// and treated as immutable once EndTime is set.
type Report struct {
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Mode      string                 `json:"mode"`
	Stopped   bool                   `json:"stopped"`
	Phases    map[string]*PhaseStats `json:"phases"`
	Errors    []string               `json:"errors"`
}

func newReport(dryRun bool) *Report {
	mode := "live"
	if dryRun {
		mode = "dry_run"
	}
	phases := make(map[string]*PhaseStats, len(phaseOrder))
	for _, name := range phaseOrder {
		phases[name] = &PhaseStats{}
	}
	return &Report{
		StartTime: time.Now(),
		Mode:      mode,
		Phases:    phases,
		Errors:    []string{},
	}
}

func (r *Report) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *Report) hasFailures() bool {
	for _, stats := range r.Phases {
		if stats.Failed > 0 {
			return true
		}
	}
	return false
}

// IDMappings translates source-platform entity IDs (kept as strings, the
// form they take in persisted metadata) to target-platform IDs. Scoped to
// one run; never persisted.
type IDMappings struct {
	Products   map[string]int
	Customers  map[string]int
	Categories map[string]int
	Variants   map[string]int
}

func newIDMappings() *IDMappings {
	return &IDMappings{
		Products:   make(map[string]int),
		Customers:  make(map[string]int),
		Categories: make(map[string]int),
		Variants:   make(map[string]int),
	}
}

// pendingImages queues a product for the image phase after metadata
// creation succeeded.
type pendingImages struct {
	targetID int
	name     string
	images   []woocommerce.Image
}

// Context is the shared mutable state of one run, threaded explicitly
// through the phase functions. Snapshots are fetched once at run start and
// never refreshed; concurrent external mutation of the target mid-run can
// therefore produce duplicates (known race, left as is so existence checks
// stay free of extra API calls).
type Context struct {
	Report   *Report
	Mappings *IDMappings

	ExistingCustomers  []woocommerce.Customer
	ExistingProducts   []woocommerce.Product
	ExistingCategories []woocommerce.Category
	ExistingOrders     []woocommerce.Order
	ExistingCoupons    []woocommerce.Coupon
	ExistingPages      []wordpress.Page
	ExistingPosts      []wordpress.Post

	UsedPlaceholderEmails map[string]bool

	pendingImages []pendingImages
}

func newContext(dryRun bool) *Context {
	return &Context{
		Report:                newReport(dryRun),
		Mappings:              newIDMappings(),
		UsedPlaceholderEmails: make(map[string]bool),
	}
}

// Result is what Run hands back to callers.
type Result struct {
	// Success means the run itself did not crash; per-item failures are
	// reported separately.
	Success     bool
	HasErrors   bool
	HasFailures bool
	Stopped     bool
	Report      *Report
}
