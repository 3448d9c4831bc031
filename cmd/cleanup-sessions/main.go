// Command cleanup-sessions deletes contributor sessions that expired more
// than a retention window ago. The window keeps shared links restorable
// while an organizer can still extend an open event's deadline.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultRetentionDays = 30

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	retentionDays := defaultRetentionDays
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Fatalf("RETENTION_DAYS must be a non-negative integer, got %q", v)
		}
		retentionDays = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx,
		"DELETE FROM contributor_sessions WHERE expires_at < now() - make_interval(days => $1)",
		retentionDays)
	if err != nil {
		log.Fatalf("delete expired sessions: %v", err)
	}

	fmt.Printf("Deleted %d contributor sessions expired over %d days ago\n", tag.RowsAffected(), retentionDays)
}
