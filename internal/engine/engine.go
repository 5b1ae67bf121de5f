// Package engine orchestrates the multi-phase migration: snapshot existing
// target data, then run categories, products, customers, orders, coupons
// and pages in order, deduplicating against the snapshots and carrying ID
// mappings forward between phases.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/store"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// SourceClient is the source storefront contract. List calls drain
// pagination fully before returning.
type SourceClient interface {
	GetProducts(ctx context.Context) ([]shopify.Product, error)
	GetCustomers(ctx context.Context) ([]shopify.Customer, error)
	GetOrders(ctx context.Context) ([]shopify.Order, error)
	GetCollections(ctx context.Context) ([]shopify.Collection, error)
	GetDiscounts(ctx context.Context) ([]shopify.Discount, error)
	GetPages(ctx context.Context) ([]shopify.Page, error)
	GetBlogs(ctx context.Context) ([]shopify.Blog, error)
	GetBlogArticles(ctx context.Context, blogID int64) ([]shopify.Article, error)
	GetOrderEvents(ctx context.Context, orderID int64) ([]shopify.Event, error)
	TestConnection(ctx context.Context) error
}

// TargetClient is the target commerce platform contract.
type TargetClient interface {
	GetExistingCustomers(ctx context.Context) ([]woocommerce.Customer, error)
	GetExistingProducts(ctx context.Context) ([]woocommerce.Product, error)
	GetExistingCategories(ctx context.Context) ([]woocommerce.Category, error)
	GetExistingOrders(ctx context.Context) ([]woocommerce.Order, error)
	GetExistingCoupons(ctx context.Context) ([]woocommerce.Coupon, error)
	CreateProduct(ctx context.Context, p *woocommerce.Product) (*woocommerce.Product, error)
	CreateCustomer(ctx context.Context, c *woocommerce.Customer) (*woocommerce.Customer, error)
	CreateOrder(ctx context.Context, o *woocommerce.Order) (*woocommerce.Order, error)
	CreateCoupon(ctx context.Context, c *woocommerce.Coupon) (*woocommerce.Coupon, error)
	CreateProductCategory(ctx context.Context, c *woocommerce.Category) (*woocommerce.Category, error)
	UpdateOrder(ctx context.Context, orderID int, o *woocommerce.Order) (*woocommerce.Order, error)
	AddOrderNote(ctx context.Context, orderID int, note string, customerNote bool) (*woocommerce.OrderNote, error)
	UpdateProductImages(ctx context.Context, productID int, images []woocommerce.Image) (*woocommerce.Product, error)
	TestConnection(ctx context.Context) error
}

// CMSClient is the optional content platform contract. When absent or
// unreachable the pages phase is skipped, not failed.
type CMSClient interface {
	GetExistingPages(ctx context.Context) ([]wordpress.Page, error)
	GetExistingPosts(ctx context.Context) ([]wordpress.Post, error)
	CreatePage(ctx context.Context, p *wordpress.NewPage) (*wordpress.Page, error)
	CreatePost(ctx context.Context, p *wordpress.NewPost) (*wordpress.Post, error)
	TestConnection(ctx context.Context) error
}

// MediaPipeline moves product images to the target media library.
type MediaPipeline interface {
	ProcessProductImages(ctx context.Context, productName string, images []woocommerce.Image) ([]woocommerce.Image, error)
	Cleanup(maxAge time.Duration) (int, error)
}

// ProgressFunc receives coarse progress updates (0-100 plus a message).
type ProgressFunc func(percent int, message string)

// LogFunc receives formatted, credential-masked log lines for display.
type LogFunc func(line string)

// Options configures an Engine.
type Options struct {
	Source SourceClient
	Target TargetClient
	CMS    CMSClient     // optional
	Media  MediaPipeline // optional; image phase skipped when nil

	Progress ProgressFunc
	Log      LogFunc

	// ReportDir is where the per-run JSON report artifact is written.
	// Empty disables the artifact.
	ReportDir string

	// ImageMaxAge bounds the local image cache; older downloads are removed
	// after the image phase. Zero means the default of 7 days.
	ImageMaxAge time.Duration

	// UpdateExistingOrders enables the diff-and-update path for orders that
	// already exist on the target. Off by default: the safe policy is
	// create-once, never touch again.
	UpdateExistingOrders bool

	// History, when set, records each run's outcome.
	History store.Store
}

// Engine runs migrations. A single Engine is not safe for concurrent Run
// calls; Stop may be called from any goroutine.
type Engine struct {
	source SourceClient
	target TargetClient
	cms    CMSClient
	media  MediaPipeline
	opts   Options

	logger    *common.Logger
	connected bool
	stopped   atomic.Bool
}

func New(opts Options) *Engine {
	if opts.ImageMaxAge == 0 {
		opts.ImageMaxAge = 7 * 24 * time.Hour
	}
	return &Engine{
		source: opts.Source,
		target: opts.Target,
		cms:    opts.CMS,
		media:  opts.Media,
		opts:   opts,
		logger: common.GetLogger().WithComponent("engine"),
	}
}

// Stop requests cooperative cancellation. The flag is polled at phase
// boundaries, at the top of each item loop and before each image transfer;
// an in-flight API call completes on its own first.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

func (e *Engine) isStopped() bool {
	return e.stopped.Load()
}

// Stopping reports whether a stop has been requested. Exposed so external
// pipelines (image transfers) can share the engine's cancellation flag.
func (e *Engine) Stopping() bool {
	return e.stopped.Load()
}

// ConnectAPIs verifies the configured platforms are reachable. Source and
// target failures are fatal; a CMS failure only degrades the pages phase to
// skipped.
func (e *Engine) ConnectAPIs(ctx context.Context) error {
	if e.source == nil || e.target == nil {
		return fmt.Errorf("source and target clients are required")
	}

	if err := e.source.TestConnection(ctx); err != nil {
		return fmt.Errorf("source connection failed: %w", err)
	}
	if err := e.target.TestConnection(ctx); err != nil {
		return fmt.Errorf("target connection failed: %w", err)
	}

	if e.cms != nil {
		if err := e.cms.TestConnection(ctx); err != nil {
			e.logf("WARNING", "CMS connection failed, pages will be skipped: %v", err)
			e.cms = nil
		}
	}

	e.connected = true
	if e.cms != nil {
		e.logf("INFO", "API connections established, pages will be migrated")
	} else {
		e.logf("INFO", "API connections established, CMS not configured, pages will be skipped")
	}
	return nil
}

// Run executes the full migration. dryRun performs all existence checks and
// mapping validation but never mutates the target.
func (e *Engine) Run(ctx context.Context, dryRun bool) (*Result, error) {
	if !e.connected {
		return nil, fmt.Errorf("connect APIs before running a migration")
	}
	e.stopped.Store(false)

	mc := newContext(dryRun)
	mode := "LIVE MIGRATION"
	if dryRun {
		mode = "DRY RUN"
	}
	e.logf("INFO", "Starting %s...", mode)

	e.progress(2, "Checking existing target data...")
	if err := e.fetchSnapshots(ctx, mc); err != nil {
		e.logf("ERROR", "Migration failed: %v", err)
		mc.Report.addError(err.Error())
		mc.Report.EndTime = time.Now()
		return &Result{
			Success:     false,
			HasErrors:   true,
			HasFailures: true,
			Report:      mc.Report,
		}, err
	}

	type phaseStep struct {
		percent int
		message string
		name    string
		run     func(context.Context, *Context, bool) error
	}
	steps := []phaseStep{
		{5, "Migrating categories...", PhaseCategories, e.migrateCategories},
		{20, "Migrating products...", PhaseProducts, e.migrateProducts},
		{50, "Migrating customers...", PhaseCustomers, e.migrateCustomers},
		{70, "Migrating orders...", PhaseOrders, e.migrateOrders},
		{85, "Migrating coupons...", PhaseCoupons, e.migrateCoupons},
		{95, "Migrating pages...", PhasePages, e.migratePages},
	}

	for _, step := range steps {
		if e.isStopped() {
			mc.Report.Stopped = true
			e.logf("WARNING", "Migration stopped before %s phase", step.name)
			break
		}
		e.progress(step.percent, step.message)
		if err := step.run(ctx, mc, dryRun); err != nil {
			// phase boundary errors are recorded and do not abort later phases
			msg := fmt.Sprintf("Error in %s migration: %v", step.name, err)
			e.logf("ERROR", "%s", msg)
			mc.Report.addError(msg)
		}
	}
	if e.isStopped() {
		mc.Report.Stopped = true
	}

	mc.Report.EndTime = time.Now()

	hasErrors := len(mc.Report.Errors) > 0
	hasFailures := mc.Report.hasFailures()

	switch {
	case mc.Report.Stopped:
		e.progress(100, "Migration stopped!")
	case hasErrors || hasFailures:
		e.progress(100, "Migration completed with errors!")
	default:
		e.progress(100, "Migration completed successfully!")
	}

	e.renderReport(mc.Report)
	if e.opts.ReportDir != "" {
		if path, err := saveReport(e.opts.ReportDir, mc.Report); err != nil {
			e.logf("ERROR", "Failed to save report: %v", err)
		} else {
			e.logf("INFO", "Report saved to: %s", path)
		}
	}
	e.recordRun(ctx, mc.Report)

	return &Result{
		Success:     true,
		HasErrors:   hasErrors,
		HasFailures: hasFailures,
		Stopped:     mc.Report.Stopped,
		Report:      mc.Report,
	}, nil
}

// fetchSnapshots loads the existing-entity snapshots every "already exists"
// decision is based on for the remainder of the run.
func (e *Engine) fetchSnapshots(ctx context.Context, mc *Context) error {
	var err error
	if mc.ExistingCustomers, err = e.target.GetExistingCustomers(ctx); err != nil {
		return fmt.Errorf("fetch existing customers: %w", err)
	}
	if mc.ExistingProducts, err = e.target.GetExistingProducts(ctx); err != nil {
		return fmt.Errorf("fetch existing products: %w", err)
	}
	if mc.ExistingCategories, err = e.target.GetExistingCategories(ctx); err != nil {
		return fmt.Errorf("fetch existing categories: %w", err)
	}
	if mc.ExistingOrders, err = e.target.GetExistingOrders(ctx); err != nil {
		return fmt.Errorf("fetch existing orders: %w", err)
	}
	if mc.ExistingCoupons, err = e.target.GetExistingCoupons(ctx); err != nil {
		return fmt.Errorf("fetch existing coupons: %w", err)
	}
	if e.cms != nil {
		if mc.ExistingPages, err = e.cms.GetExistingPages(ctx); err != nil {
			return fmt.Errorf("fetch existing pages: %w", err)
		}
		if mc.ExistingPosts, err = e.cms.GetExistingPosts(ctx); err != nil {
			return fmt.Errorf("fetch existing posts: %w", err)
		}
	}

	e.logf("INFO", "Found %d existing customers, %d existing products, %d existing categories, %d existing orders, %d existing coupons, %d existing pages",
		len(mc.ExistingCustomers), len(mc.ExistingProducts), len(mc.ExistingCategories),
		len(mc.ExistingOrders), len(mc.ExistingCoupons), len(mc.ExistingPages))
	return nil
}

func (e *Engine) recordRun(ctx context.Context, report *Report) {
	if e.opts.History == nil {
		return
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		e.logf("ERROR", "Failed to serialize report for run history: %v", err)
		return
	}
	rec := store.RunRecord{
		Mode:      report.Mode,
		StartedAt: report.StartTime,
		EndedAt:   report.EndTime,
		Stopped:   report.Stopped,
		Report:    string(reportJSON),
	}
	if _, err := e.opts.History.RecordRun(ctx, rec); err != nil {
		e.logf("ERROR", "Failed to record run history: %v", err)
	}
}

// logf logs through the structured logger and forwards a masked, formatted
// line to the log callback. Callback panics never abort the migration.
func (e *Engine) logf(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch level {
	case "ERROR":
		e.logger.Error(msg)
	case "WARNING":
		e.logger.Warn(msg)
	case "DEBUG":
		e.logger.Debug(msg)
	default:
		e.logger.Info(msg)
	}

	if e.opts.Log != nil {
		line := fmt.Sprintf("[%s] %s", level, common.MaskSensitive(msg))
		func() {
			defer func() { _ = recover() }()
			e.opts.Log(line)
		}()
	}
}

func (e *Engine) progress(percent int, message string) {
	if e.opts.Progress == nil {
		return
	}
	func() {
		defer func() { _ = recover() }()
		e.opts.Progress(percent, message)
	}()
}
