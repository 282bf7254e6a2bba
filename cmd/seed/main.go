// Command seed loads catalog fixtures into the database.
//
//	seed ingredients <file.csv|file.xlsx>
//	seed tags
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/redis"
)

const usage = "Usage: seed ingredients <file.csv|file.xlsx> | seed tags"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	catalogCache := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, cached catalog entries expire on their own", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			catalogCache = cache.NewRedisCache(redis.GetClient(), cfg.Redis.CatalogTTL)
		}
	}

	catalog := service.NewCatalogService(
		repository.NewTagRepository(db.GetDB()),
		repository.NewIngredientRepository(db.GetDB()),
		catalogCache,
	)

	if err := run(context.Background(), catalog, os.Args[1:]); err != nil {
		logger.Fatal("Seeding failed", err)
	}
}

func run(ctx context.Context, catalog service.CatalogService, args []string) error {
	switch args[0] {
	case "ingredients":
		if len(args) < 2 {
			return fmt.Errorf("missing fixture file\n%s", usage)
		}
		ingredients, err := readIngredients(args[1])
		if err != nil {
			return err
		}
		created, err := catalog.ImportIngredients(ctx, ingredients)
		if err != nil {
			return err
		}
		fmt.Printf("Ingredients: %d read, %d created, %d already present\n",
			len(ingredients), created, int64(len(ingredients))-created)

	case "tags":
		tags, err := buildTags(defaultTags)
		if err != nil {
			return err
		}
		created, err := catalog.ImportTags(ctx, tags)
		if err != nil {
			return err
		}
		fmt.Printf("Tags: %d created\n", created)

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}
