// Command fashionetl scrapes the storefront catalog, normalizes the listings,
// and loads them into CSV, Google Sheets and PostgreSQL.
//
// Usage:
//
//	fashionetl [--config path] [--url base] [--pages n] [--summary]
//
// Configuration is read from .env, an optional config file, and ETL_*
// environment variables; see internal/config for the keys.
package main
