package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize and seed the inventory database",
		Commands: []*cli.Command{
			{
				Name:   "init-db",
				Usage:  "Create the items, daily_sales and predictions tables",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runInitDB,
			},
			{
				Name:  "items",
				Usage: "Seed the item catalog from a CSV file (sku,name,current_stock,reorder_point)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "Path to the items CSV file",
						Value:   "./data/seeds/items.csv",
						EnvVars: []string{"SEED_ITEMS_FILE"},
					},
				},
				Action: runSeedItems,
			},
			{
				Name:  "sales",
				Usage: "Seed daily sales from a CSV file (date,sku,quantity,unit_price)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "Path to the sales CSV file",
						Value:   "./data/seeds/sales.csv",
						EnvVars: []string{"SEED_SALES_FILE"},
					},
				},
				Action: runSeedSales,
			},
			{
				Name:  "all",
				Usage: "Initialize the schema and seed items and sales",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "items-file",
						Value:   "./data/seeds/items.csv",
						EnvVars: []string{"SEED_ITEMS_FILE"},
					},
					&cli.StringFlag{
						Name:    "sales-file",
						Value:   "./data/seeds/sales.csv",
						EnvVars: []string{"SEED_SALES_FILE"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := runInitDB(c); err != nil {
						return err
					}
					if err := seedItems(c.Context, c.String("db-url"), c.String("items-file")); err != nil {
						return err
					}
					return seedSales(c.Context, c.String("db-url"), c.String("sales-file"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id BIGSERIAL PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	current_stock INTEGER NOT NULL DEFAULT 0,
	reorder_point INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS daily_sales (
	id BIGSERIAL PRIMARY KEY,
	sku TEXT NOT NULL REFERENCES items(sku) ON DELETE CASCADE,
	sale_date DATE NOT NULL,
	quantity_sold DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	UNIQUE (sku, sale_date)
);

CREATE INDEX IF NOT EXISTS idx_daily_sales_sku_date ON daily_sales (sku, sale_date);

CREATE TABLE IF NOT EXISTS predictions (
	id BIGSERIAL PRIMARY KEY,
	sku TEXT NOT NULL REFERENCES items(sku) ON DELETE CASCADE,
	sales_velocity DOUBLE PRECISION NOT NULL,
	predicted_run_out_date DATE,
	confidence_score DOUBLE PRECISION NOT NULL,
	seasonal_factor DOUBLE PRECISION NOT NULL,
	data_points INTEGER NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_predictions_sku_generated ON predictions (sku, generated_at DESC);
`

func runInitDB(c *cli.Context) error {
	db, err := openDB(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("Creating schema...")
	if _, err := db.ExecContext(c.Context, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("Schema created successfully")
	return nil
}

func runSeedItems(c *cli.Context) error {
	return seedItems(c.Context, c.String("db-url"), c.String("file"))
}

func runSeedSales(c *cli.Context) error {
	return seedSales(c.Context, c.String("db-url"), c.String("file"))
}

func seedItems(ctx context.Context, dbURL, filePath string) error {
	db, err := openDB(dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO items (sku, name, current_stock, reorder_point, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			current_stock = EXCLUDED.current_stock,
			reorder_point = EXCLUDED.reorder_point,
			updated_at = NOW()
	`

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 4 {
			return fmt.Errorf("invalid record (expected 4 columns): %v", record)
		}

		sku := strings.ToUpper(strings.TrimSpace(record[0]))
		name := strings.TrimSpace(record[1])
		stock, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return fmt.Errorf("invalid current_stock for sku %s: %w", sku, err)
		}
		reorder, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return fmt.Errorf("invalid reorder_point for sku %s: %w", sku, err)
		}

		if _, err := tx.ExecContext(ctx, query, sku, name, stock, reorder); err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", sku, err)
		}
		rowCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully seeded %d items from %s\n", rowCount, filePath)
	return nil
}

func seedSales(ctx context.Context, dbURL, filePath string) error {
	db, err := openDB(dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO daily_sales (sku, sale_date, quantity_sold, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku, sale_date) DO UPDATE SET
			quantity_sold = daily_sales.quantity_sold + EXCLUDED.quantity_sold,
			unit_price = EXCLUDED.unit_price
	`

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 3 {
			return fmt.Errorf("invalid record (expected at least 3 columns): %v", record)
		}

		saleDate, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", record[0], err)
		}
		sku := strings.ToUpper(strings.TrimSpace(record[1]))
		quantity, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil || quantity < 0 {
			return fmt.Errorf("invalid quantity for sku %s on %s: %v", sku, record[0], record[2])
		}

		unitPrice := 0.0
		if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
			unitPrice, err = strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
			if err != nil {
				return fmt.Errorf("invalid unit_price for sku %s: %w", sku, err)
			}
		}

		if _, err := tx.ExecContext(ctx, query, sku, saleDate, quantity, unitPrice); err != nil {
			return fmt.Errorf("failed to upsert sale for %s: %w", sku, err)
		}
		rowCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully seeded %d sales records from %s\n", rowCount, filePath)
	return nil
}
