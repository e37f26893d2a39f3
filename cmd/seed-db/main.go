// Command seed-db loads the product catalog, storefront filters, launch
// promotions, a demo buyer, and the back-office API key into the database.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/repository"
)

type productJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	Inventory int             `json:"inventory"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, category, image, inventory)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category,
			image = EXCLUDED.image, inventory = EXCLUDED.inventory`

	upsertFilterSQL = `INSERT INTO filters (id, name, category, sort_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, sort_order = EXCLUDED.sort_order`

	upsertPromotionSQL = `INSERT INTO promotions
		(id, name, code, discount_type, discount_value, starts_at, ends_at, is_active, min_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name, discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value, starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at, is_active = EXCLUDED.is_active,
			min_purchase = EXCLUDED.min_purchase`

	upsertUserSQL = `INSERT INTO users (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone`

	upsertAddressSQL = `INSERT INTO addresses
		(id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			street = EXCLUDED.street, number = EXCLUDED.number, complement = EXCLUDED.complement,
			neighborhood = EXCLUDED.neighborhood, city = EXCLUDED.city, state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code, is_default = EXCLUDED.is_default`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash, name = EXCLUDED.name,
			scopes = EXCLUDED.scopes, active = EXCLUDED.active`
)

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "back-office API key to seed (or FIT_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or FIT_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("FIT_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or FIT_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("FIT_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedFilters(ctx, pool); err != nil {
		return errors.Wrap(err, "seed filters")
	}
	if err := seedPromotions(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promotions")
	}
	if err := seedDemoBuyer(ctx, pool); err != nil {
		return errors.Wrap(err, "seed demo buyer")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.Category, p.Image, p.Inventory,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedFilters(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding storefront filters")

	filters := []struct {
		id        string
		name      string
		category  string
		sortOrder int
	}{
		{"flt-proteinas", "Proteinas", "suplementos", 1},
		{"flt-creatina", "Creatina", "suplementos", 2},
		{"flt-aminoacidos", "Aminoacidos", "suplementos", 3},
		{"flt-camisetas", "Camisetas", "vestuario", 1},
		{"flt-shorts", "Shorts", "vestuario", 2},
		{"flt-acessorios", "Acessorios", "equipamentos", 1},
	}

	for _, f := range filters {
		if _, err := pool.Exec(ctx, upsertFilterSQL, f.id, f.name, f.category, f.sortOrder); err != nil {
			return errors.Wrapf(err, "upsert filter %s", f.id)
		}
	}

	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch promotions")

	now := time.Now().UTC()
	promotions := []struct {
		id            string
		name          string
		code          string
		discountType  string
		discountValue string
		startsAt      time.Time
		endsAt        time.Time
		active        bool
		minPurchase   string
	}{
		{
			id: "promo-power10", name: "Power 10", code: "POWER10",
			discountType: "percentage", discountValue: "10",
			startsAt: now.AddDate(0, -1, 0), endsAt: now.AddDate(1, 0, 0),
			active: true, minPurchase: "0",
		},
		{
			id: "promo-frete15", name: "Frete por nossa conta", code: "FRETE15",
			discountType: "fixed", discountValue: "15.00",
			startsAt: now.AddDate(0, -1, 0), endsAt: now.AddDate(0, 6, 0),
			active: true, minPurchase: "150.00",
		},
		{
			id: "promo-blackfit", name: "Black Fit", code: "BLACKFIT30",
			discountType: "percentage", discountValue: "30",
			startsAt: now.AddDate(0, 2, 0), endsAt: now.AddDate(0, 3, 0),
			active: true, minPurchase: "0",
		},
	}

	for _, p := range promotions {
		value, err := decimal.NewFromString(p.discountValue)
		if err != nil {
			return errors.Wrapf(err, "parse discount value for %s", p.code)
		}
		minPurchase, err := decimal.NewFromString(p.minPurchase)
		if err != nil {
			return errors.Wrapf(err, "parse min purchase for %s", p.code)
		}

		_, err = pool.Exec(ctx, upsertPromotionSQL,
			p.id, p.name, p.code, p.discountType, value,
			p.startsAt, p.endsAt, p.active, minPurchase,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.code)
		}

		slog.Info("upserted promotion", slog.String("code", p.code))
	}

	return nil
}

func seedDemoBuyer(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo buyer")

	_, err := pool.Exec(ctx, upsertUserSQL,
		"demo-user", "Maria Souza", "maria@powerfit.example", "+5511999990000",
	)
	if err != nil {
		return errors.Wrap(err, "upsert demo user")
	}

	_, err = pool.Exec(ctx, upsertAddressSQL,
		"demo-address", "demo-user", "Rua Augusta", "1024", "ap 31", "Consolacao",
		"Sao Paulo", "SP", "01305-000", true,
	)
	if err != nil {
		return errors.Wrap(err, "upsert demo address")
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding back-office API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, upsertAPIKeySQL,
		"back-office", keyHash, "Back-office key", []string{"admin"}, true,
	)
	if err != nil {
		return errors.Wrap(err, "upsert back-office API key")
	}

	slog.Info("upserted API key", slog.String("id", "back-office"))

	return nil
}
