package events

import "github.com/Mr-Shodiyorov/admin-page/internal/domain"

type ProductAdded struct {
	ProductID domain.ProductID `json:"product_id"`
	Title     string           `json:"title"`
}

type ProductUpdated struct {
	ProductID domain.ProductID `json:"product_id"`
}

type ProductDeleted struct {
	ProductID domain.ProductID `json:"product_id"`
}

type LocaleChanged struct {
	Locale string `json:"locale"`
}
