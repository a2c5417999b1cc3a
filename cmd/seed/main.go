// Command seed fills the catalog with generated products and creates the
// default admin account, for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/logger"
	"github.com/outfitly/storefront-api/pkg/models"
	"github.com/outfitly/storefront-api/pkg/mongo"
)

const productCount = 50

var (
	adjectives = []string{"Sleek", "Rustic", "Incredible", "Handcrafted", "Refined", "Gorgeous", "Practical", "Ergonomic", "Licensed", "Unbranded"}
	materials  = []string{"Cotton", "Wool", "Linen", "Leather", "Silk", "Denim", "Fleece", "Canvas"}
	garments   = []string{"Shirt", "Jacket", "Trousers", "Dress", "Sweater", "Coat", "Skirt", "Scarf"}
	categories = []string{"Clothing", "Shoes", "Outdoors", "Accessories", "Sportswear"}
	colors     = []string{"black", "white", "navy", "olive", "burgundy", "beige", "teal"}
	sizes      = []string{"S", "M", "L", "XL"}
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Options{
		Service: "storefront-seed",
		Env:     global.GetEnvOrDefault("ENV", "dev"),
		Level:   global.GetEnvOrDefault("LOG_LEVEL", "info"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongo.Connect(ctx, global.GetMongoURI(), global.GetDatabaseName())
	if err != nil {
		log.Error("mongodb connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Error("index bootstrap failed", "err", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	products := make([]*models.Product, 0, productCount)
	for i := 0; i < productCount; i++ {
		products = append(products, randomProduct(rng))
	}
	if err := db.CreateProducts(ctx, products); err != nil {
		log.Error("product seeding failed", "err", err)
		os.Exit(1)
	}
	log.Info("seeded products", "count", productCount)

	if err := seedAdmin(ctx, db); err != nil {
		log.Error("admin seeding failed", "err", err)
		os.Exit(1)
	}
	log.Info("seeded admin user", "email", "admin@example.com")
}

func randomProduct(rng *rand.Rand) *models.Product {
	adjective := adjectives[rng.Intn(len(adjectives))]
	material := materials[rng.Intn(len(materials))]
	garment := garments[rng.Intn(len(garments))]
	title := fmt.Sprintf("%s %s %s", adjective, material, garment)

	return &models.Product{
		Title:       title,
		Description: fmt.Sprintf("The %s is made from %s and built to last.", title, material),
		Price:       float64(rng.Intn(19000)+1000) / 100,
		Categories:  []string{categories[rng.Intn(len(categories))]},
		Image:       fmt.Sprintf("https://picsum.photos/seed/%d/640/480", rng.Intn(100000)),
		InStock:     rng.Intn(4) != 0,
		Size:        []string{sizes[rng.Intn(len(sizes))]},
		Color:       []string{colors[rng.Intn(len(colors))]},
	}
}

func seedAdmin(ctx context.Context, db *mongo.Store) error {
	passwordHash, err := bcrypt.GenerateFromPassword(
		[]byte(global.GetEnvOrDefault("ADMIN_PASSWORD", "adminpassword")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Fullname: "Admin User",
		Email:    "admin@example.com",
		Password: string(passwordHash),
		IsAdmin:  true,
	}
	err = db.CreateUser(ctx, admin)
	if errors.Is(err, models.ErrDuplicateEmail) {
		return nil
	}
	return err
}
