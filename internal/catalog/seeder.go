package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// シード商品の属性候補。
var (
	categories = []string{"Smartphone", "Laptop", "Tablet", "Smartwatch", "Camera", "Speaker", "Headphones", "Monitor", "Printer"}
	colors     = []string{"Black", "White", "Silver", "Gold", "Blue", "Red"}
	materials  = []string{"Plastic", "Metal", "Glass", "Aluminum", "Carbon Fiber"}
)

// generateProduct はランダムな属性を持つシード用商品を生成する。
func generateProduct() Product {
	releaseDate := gofakeit.DateRange(
		time.Now().AddDate(-10, 0, 0),
		time.Now(),
	).Format("2006-01-02")

	features := []string{
		gofakeit.Sentence(5),
		gofakeit.Sentence(5),
		gofakeit.Sentence(5),
	}

	return Product{
		Name:        fmt.Sprintf("%s %s", gofakeit.Company(), gofakeit.Word()),
		Brand:       gofakeit.Company(),
		Category:    gofakeit.RandomString(categories),
		Price:       gofakeit.Price(1, 999),
		Stock:       gofakeit.Number(0, 500),
		SKU:         uuid.New().String(),
		ReleaseDate: releaseDate,
		Description: gofakeit.Sentence(10),
		Features:    strings.Join(features, ", "),
		Warranty:    fmt.Sprintf("%d years", gofakeit.Number(1, 3)),
		Rating:      math.Round(gofakeit.Float64Range(2.5, 5.0)*10) / 10,
		Dimensions:  fmt.Sprintf("%dx%dx%d cm", gofakeit.Number(5, 50), gofakeit.Number(5, 50), gofakeit.Number(1, 10)),
		Weight:      fmt.Sprintf("%d grams", gofakeit.Number(100, 5000)),
		Color:       gofakeit.RandomString(colors),
		Material:    gofakeit.RandomString(materials),
	}
}
