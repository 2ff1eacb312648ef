package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// ConnectDB opens the shared pool for the messaging service. Inbox reads
// dominate the workload; sends and mark-reads hold short two-statement
// transactions, so connections are recycled aggressively.
func ConnectDB(dbUrl string) error {
	config, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return fmt.Errorf("unable to parse database config: %v", err)
	}

	config.MaxConns = 20
	config.MinConns = 4
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 15 * time.Minute
	config.ConnConfig.ConnectTimeout = 5 * time.Second

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		DB.Close()
		return fmt.Errorf("unable to ping database: %v", err)
	}

	fmt.Println("Messaging database connected")
	return nil
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
