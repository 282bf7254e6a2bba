package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// tagFixture is one default tag with its validation rules.
type tagFixture struct {
	Name  string `validate:"required,max=200"`
	Color string `validate:"required,hexcolor,len=7"`
	Slug  string `validate:"required,max=200,slug"`
}

var defaultTags = []tagFixture{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func isSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", isSlug)
	return v
}

// buildTags validates fixtures and converts them to models.
func buildTags(fixtures []tagFixture) ([]model.Tag, error) {
	v := newValidator()
	tags := make([]model.Tag, 0, len(fixtures))
	for _, f := range fixtures {
		if err := v.Struct(f); err != nil {
			return nil, fmt.Errorf("invalid tag %q: %w", f.Name, err)
		}
		tags = append(tags, model.Tag{Name: f.Name, Color: strings.ToUpper(f.Color), Slug: f.Slug})
	}
	return tags, nil
}

// readIngredients loads (name, measurement_unit) rows from a .csv or .xlsx
// file. Blank rows are skipped and duplicates within the file collapse.
func readIngredients(path string) ([]model.Ingredient, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return parseIngredientsCSV(f)
	case ".xlsx":
		return readIngredientsXLSX(path)
	}
	return nil, fmt.Errorf("unsupported fixture format %q, expected .csv or .xlsx", filepath.Ext(path))
}

func parseIngredientsCSV(r io.Reader) ([]model.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return ingredientsFromRows(rows)
}

func readIngredientsXLSX(path string) ([]model.Ingredient, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return ingredientsFromRows(rows)
}

func ingredientsFromRows(rows [][]string) ([]model.Ingredient, error) {
	seen := make(map[string]bool)
	ingredients := make([]model.Ingredient, 0, len(rows))

	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected name and measurement unit", i+1)
		}

		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			return nil, fmt.Errorf("row %d: name and measurement unit must not be empty", i+1)
		}
		// optional header row
		if i == 0 && strings.EqualFold(name, "name") && strings.EqualFold(unit, "measurement_unit") {
			continue
		}

		key := name + "\x00" + unit
		if seen[key] {
			continue
		}
		seen[key] = true
		ingredients = append(ingredients, model.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return ingredients, nil
}
