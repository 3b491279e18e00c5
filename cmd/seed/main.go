package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ingredientData struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagData struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to the ingredients fixture")
	tagsPath := flag.String("tags", "data/tags.json", "path to the tags fixture")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seedIngredients(db, *ingredientsPath); err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
	if err := seedTags(db, *tagsPath); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	log.Println("Seeding completed")
}

func seedIngredients(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var data []ingredientData
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	// Ingredients carry no unique constraint, so re-running the seeder must
	// skip rows already present instead of relying on the database.
	var existing []models.Ingredient
	if err := db.Find(&existing).Error; err != nil {
		return err
	}
	seen := make(map[[2]string]bool, len(existing))
	for _, ing := range existing {
		seen[[2]string{ing.Name, ing.MeasurementUnit}] = true
	}

	var fresh []models.Ingredient
	for _, d := range data {
		key := [2]string{d.Name, d.MeasurementUnit}
		if seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, models.Ingredient{
			Name:            d.Name,
			MeasurementUnit: d.MeasurementUnit,
		})
	}

	if len(fresh) > 0 {
		if err := db.CreateInBatches(fresh, 500).Error; err != nil {
			return err
		}
	}

	log.Printf("Loaded %d ingredients from %s (%d new)", len(data), path, len(fresh))
	return nil
}

func seedTags(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No tags fixture at %s, skipping", path)
			return nil
		}
		return err
	}

	var data []tagData
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	for _, d := range data {
		tag := models.Tag{Name: d.Name, Color: d.Color, Slug: d.Slug}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return err
		}
	}

	log.Printf("Loaded %d tags from %s", len(data), path)
	return nil
}
