package shopmigrate

import (
	"crypto/tls"
	"time"

	"github.com/nokel/shopify-migration-tool/internal/engine"
	"github.com/nokel/shopify-migration-tool/internal/images"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/store"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// Re-export commonly used types for public API

// Engine orchestrates a full migration run.
type Engine = engine.Engine

// Options configures an Engine.
type Options = engine.Options

// Result summarizes one completed (or stopped) run.
type Result = engine.Result

// Report is the per-phase breakdown serialized into the report artifact.
type Report = engine.Report

// PhaseStats tallies one phase: attempted always equals successful + failed.
type PhaseStats = engine.PhaseStats

// ProgressFunc receives coarse progress updates (0-100 plus a message).
type ProgressFunc = engine.ProgressFunc

// LogFunc receives formatted, credential-masked log lines.
type LogFunc = engine.LogFunc

// Client contracts, satisfied by the bundled clients below or by fakes.
type (
	SourceClient  = engine.SourceClient
	TargetClient  = engine.TargetClient
	CMSClient     = engine.CMSClient
	MediaPipeline = engine.MediaPipeline
)

// New constructs an Engine; call ConnectAPIs before Run.
func New(opts Options) *Engine { return engine.New(opts) }

// ShopifyConfig configures the source storefront client.
type ShopifyConfig = shopify.Config

// NewShopifyClient returns a Shopify Admin REST API client.
func NewShopifyClient(cfg ShopifyConfig) *shopify.Client { return shopify.New(cfg) }

// WooCommerceConfig configures the target commerce client.
type WooCommerceConfig = woocommerce.Config

// NewWooCommerceClient returns a WooCommerce REST API client.
func NewWooCommerceClient(cfg WooCommerceConfig) *woocommerce.Client { return woocommerce.New(cfg) }

// WordPressConfig configures the optional content platform client.
type WordPressConfig = wordpress.Config

// NewWordPressClient returns a WordPress REST API client.
func NewWordPressClient(cfg WordPressConfig) *wordpress.Client { return wordpress.New(cfg) }

// NewImageManager returns the product image pipeline backed by the given
// media library (typically a WordPress client) and local cache directory.
func NewImageManager(dir string, media images.MediaClient, tlsConfig *tls.Config) (*images.Manager, error) {
	return images.NewManager(dir, media, tlsConfig)
}

// Store persists run history.
type Store = store.Store

// RunRecord is one persisted run outcome.
type RunRecord = store.RunRecord

// StoreConfig selects the sqlite or postgresql run-history backend.
type StoreConfig = store.Config

const (
	DriverSqlite     = store.DriverSqlite
	DriverPostgresql = store.DriverPostgresql
)

// OpenStore opens the configured run-history store and ensures its schema.
func OpenStore(cfg StoreConfig) (Store, error) { return cfg.Open() }

// DefaultImageMaxAge bounds the local image cache between runs.
const DefaultImageMaxAge = 7 * 24 * time.Hour
