package store

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const sqliteBusyTimeoutMS = 5000

// sqliteConfig accepts either a full DSN or a file path. Empty means an
// in-memory database.
type sqliteConfig struct {
	Dsn  string `mapstructure:"dsn"`
	Path string `mapstructure:"path"`
}

func (c *sqliteConfig) DSN() string {
	if c.Dsn != "" {
		return c.Dsn
	}
	if c.Path != "" {
		return fmt.Sprintf("file:%s?_busy_timeout=%d", c.Path, sqliteBusyTimeoutMS)
	}
	return ":memory:"
}

// postgresConfig accepts either a full DSN or discrete connection fields.
type postgresConfig struct {
	Dsn      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *postgresConfig) DSN() string {
	if c.Dsn != "" {
		return c.Dsn
	}

	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	add("host", c.Host)
	if c.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", c.Port))
	}
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.DBName)
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	add("sslmode", sslMode)

	return strings.Join(parts, " ")
}
