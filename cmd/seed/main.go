package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/careclinic/care-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedSlots(context.Background(), pool, 50); err != nil {
		log.Fatalf("seed schedule slots: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d schedule slots", count)

	times := []string{
		"08:00 AM",
		"09:00 AM",
		"10:30 AM",
		"01:00 PM",
		"02:30 PM",
		"04:00 PM",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		date := time.Now().AddDate(0, 0, gofakeit.Number(1, 60))
		slotTime := times[gofakeit.Number(0, len(times)-1)]
		capacity := gofakeit.Number(1, 10)

		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_slots (slot_date, slot_time, capacity, created_at)
			VALUES ($1, $2, $3, now())
		`, date, slotTime, capacity)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("schedule slots seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	// One shared hash keeps seeding fast; every seeded account logs in with
	// the same throwaway password.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			name := gofakeit.Name()
			dob := gofakeit.DateRange(
				time.Now().AddDate(-90, 0, 0),
				time.Now().AddDate(-18, 0, 0),
			)
			age := int(time.Since(dob).Hours() / 24 / 365)
			address := gofakeit.Address().Address
			phone := fmt.Sprintf("555-%04d-%04d", i, gofakeit.Number(0, 9999))

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (full_name, age, date_of_birth, address, phone_number, password_hash, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())
			`, name, age, dob, address, phone, string(hash))
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
