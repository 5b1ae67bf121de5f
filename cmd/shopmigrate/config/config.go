// Package config loads and validates the YAML configuration document for
// the shopmigrate CLI.
package config

import (
	"crypto/tls"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nokel/shopify-migration-tool/internal/store"
)

type ShopifyConfig struct {
	StoreURL    string `mapstructure:"store_url" yaml:"store_url"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token"`
}

type WooCommerceConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	ConsumerKey    string `mapstructure:"consumer_key" yaml:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret" yaml:"consumer_secret"`
}

// WordPressConfig is optional; without it the pages phase is skipped and
// the image pipeline is disabled.
type WordPressConfig struct {
	// URL defaults to the WooCommerce site URL; set it only when the
	// WordPress REST API lives elsewhere.
	URL         string `mapstructure:"url" yaml:"url"`
	Username    string `mapstructure:"username" yaml:"username"`
	AppPassword string `mapstructure:"app_password" yaml:"app_password"`
}

func (w *WordPressConfig) Configured() bool {
	return w.Username != "" && w.AppPassword != ""
}

type MigrateConfig struct {
	ReportDir            string `mapstructure:"report_dir" yaml:"report_dir"`
	ImagesDir            string `mapstructure:"images_dir" yaml:"images_dir"`
	ImageMaxAgeDays      int    `mapstructure:"image_max_age_days" yaml:"image_max_age_days"`
	UpdateExistingOrders bool   `mapstructure:"update_existing_orders" yaml:"update_existing_orders"`
}

type ClientConfig struct {
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`
}

// TLS returns the TLS settings for outgoing API calls, nil for defaults.
func (c *ClientConfig) TLS() *tls.Config {
	if !c.Insecure {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"` // text, json
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"`
}

type StoreConfig struct {
	Disabled bool           `mapstructure:"disabled" yaml:"disabled"`
	Driver   string         `mapstructure:"driver" yaml:"driver"`
	Config   map[string]any `mapstructure:"config" yaml:"config"`
}

// Open connects the run-history store, or returns nil when disabled.
func (s *StoreConfig) Open() (store.Store, error) {
	if s.Disabled {
		return nil, nil
	}
	cfg := store.Config{Driver: s.Driver, DriverConfig: s.Config}
	return cfg.Open()
}

type ConfigDoc struct {
	Shopify     ShopifyConfig     `mapstructure:"shopify" yaml:"shopify"`
	WooCommerce WooCommerceConfig `mapstructure:"woocommerce" yaml:"woocommerce"`
	WordPress   WordPressConfig   `mapstructure:"wordpress" yaml:"wordpress"`
	Migrate     MigrateConfig     `mapstructure:"migrate" yaml:"migrate"`
	Client      ClientConfig      `mapstructure:"client" yaml:"client"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
}

// Load reads and parses the YAML config file, applying defaults.
func Load(path string) (*ConfigDoc, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc ConfigDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if doc.Migrate.ReportDir == "" {
		doc.Migrate.ReportDir = "logs"
	}
	if doc.Migrate.ImagesDir == "" {
		doc.Migrate.ImagesDir = "shopify_images"
	}
	if doc.Migrate.ImageMaxAgeDays == 0 {
		doc.Migrate.ImageMaxAgeDays = 7
	}

	return &doc, nil
}

// Validate checks the required connection settings are present.
func (c *ConfigDoc) Validate() error {
	if c.Shopify.StoreURL == "" {
		return fmt.Errorf("shopify.store_url is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("shopify.access_token is required")
	}
	if c.WooCommerce.URL == "" {
		return fmt.Errorf("woocommerce.url is required")
	}
	if c.WooCommerce.ConsumerKey == "" || c.WooCommerce.ConsumerSecret == "" {
		return fmt.Errorf("woocommerce.consumer_key and woocommerce.consumer_secret are required")
	}
	if (c.WordPress.Username == "") != (c.WordPress.AppPassword == "") {
		return fmt.Errorf("wordpress.username and wordpress.app_password must be set together")
	}
	return nil
}
