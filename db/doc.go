// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the session database and creates its schema.

# Drivers

Two drivers are registered:

  - sqlite: modernc.org/sqlite, CGO-free, the default for single-node installs
  - postgres: github.com/lib/pq

Open picks the driver by name:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

sqlite connections are capped at one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - session: one row per browser session. Holds the bearer tokens issued by
    the farm management API, the signed-in user's name and email, and the
    pending username/email between the password step and the OTP step.
*/
package db
