package catalog

import (
	"fmt"
	"strconv"
)

// Product は商品カタログのレコード。
type Product struct {
	// ID は作成時に採番される商品ID。シードでは0から密に振られる。
	ID int64 `json:"id"`
	// Name は商品名。
	Name string `json:"name"`
	// Brand はブランド名。
	Brand string `json:"brand"`
	// Category は商品カテゴリ。
	Category string `json:"category"`
	// Price は価格。
	Price float64 `json:"price"`
	// Stock は在庫数。
	Stock int `json:"stock"`
	// SKU は在庫管理単位の識別子。
	SKU string `json:"sku"`
	// ReleaseDate は発売日（YYYY-MM-DD）。
	ReleaseDate string `json:"release_date"`
	// Description は商品説明。
	Description string `json:"description"`
	// Features は特徴の一覧。
	Features string `json:"features"`
	// Warranty は保証期間。
	Warranty string `json:"warranty"`
	// Rating は評価値。
	Rating float64 `json:"rating"`
	// Dimensions は寸法。
	Dimensions string `json:"dimensions"`
	// Weight は重量。
	Weight string `json:"weight"`
	// Color は色。
	Color string `json:"color"`
	// Material は素材。
	Material string `json:"material"`
}

// toFields は商品をバックエンドのハッシュフィールドに変換する。
// IDはキー（product:{id}）側で表現するためフィールドには含めない。
func (p Product) toFields() map[string]string {
	return map[string]string{
		"name":         p.Name,
		"brand":        p.Brand,
		"category":     p.Category,
		"price":        strconv.FormatFloat(p.Price, 'f', 2, 64),
		"stock":        strconv.Itoa(p.Stock),
		"sku":          p.SKU,
		"release_date": p.ReleaseDate,
		"description":  p.Description,
		"features":     p.Features,
		"warranty":     p.Warranty,
		"rating":       strconv.FormatFloat(p.Rating, 'f', 1, 64),
		"dimensions":   p.Dimensions,
		"weight":       p.Weight,
		"color":        p.Color,
		"material":     p.Material,
	}
}

// productFromFields はバックエンドのハッシュフィールドから商品を復元する。
func productFromFields(id int64, fields map[string]string) (Product, error) {
	price, err := strconv.ParseFloat(fields["price"], 64)
	if err != nil {
		return Product{}, fmt.Errorf("価格のパースに失敗 (id=%d): %w", id, err)
	}
	stock, err := strconv.Atoi(fields["stock"])
	if err != nil {
		return Product{}, fmt.Errorf("在庫数のパースに失敗 (id=%d): %w", id, err)
	}
	rating, err := strconv.ParseFloat(fields["rating"], 64)
	if err != nil {
		return Product{}, fmt.Errorf("評価値のパースに失敗 (id=%d): %w", id, err)
	}

	return Product{
		ID:          id,
		Name:        fields["name"],
		Brand:       fields["brand"],
		Category:    fields["category"],
		Price:       price,
		Stock:       stock,
		SKU:         fields["sku"],
		ReleaseDate: fields["release_date"],
		Description: fields["description"],
		Features:    fields["features"],
		Warranty:    fields["warranty"],
		Rating:      rating,
		Dimensions:  fields["dimensions"],
		Weight:      fields["weight"],
		Color:       fields["color"],
		Material:    fields["material"],
	}, nil
}
