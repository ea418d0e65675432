package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// productRecord is the products row as GORM maps it. Sequences are kept as
// JSON text so the same table works on SQLite and Postgres.
type productRecord struct {
	ID          string   `gorm:"primaryKey;type:varchar(36)"`
	Title       string   `gorm:"not null"`
	Brand       string   `gorm:"not null"`
	Gender      string   `gorm:"type:varchar(16)"`
	Valute      string   `gorm:"type:varchar(8)"`
	Images      []string `gorm:"serializer:json"`
	Info        *string
	ReleaseDate *string
	Variants    []domain.Variant `gorm:"serializer:json"`
	Price       *float64
	OldMoney    *float64
	Discount    *float64
	ItemLeft    *int
	MLSizes     []float64 `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"index"`
}

func (productRecord) TableName() string {
	return "products"
}

func recordFrom(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID.String(),
		Title:       p.Title,
		Brand:       p.Brand,
		Gender:      string(p.Gender),
		Valute:      string(p.Valute),
		Images:      p.Images,
		Info:        p.Info,
		ReleaseDate: p.ReleaseDate,
		Variants:    p.Variants,
		Price:       p.Price,
		OldMoney:    p.OldMoney,
		Discount:    p.Discount,
		ItemLeft:    p.ItemLeft,
		MLSizes:     p.MLSizes,
		CreatedAt:   p.CreatedAt,
	}
}

func (r productRecord) product() *domain.Product {
	return &domain.Product{
		ID:          domain.ProductID(r.ID),
		Title:       r.Title,
		Brand:       r.Brand,
		Gender:      domain.Gender(r.Gender),
		Valute:      domain.Currency(r.Valute),
		Images:      r.Images,
		Info:        r.Info,
		ReleaseDate: r.ReleaseDate,
		Variants:    r.Variants,
		Price:       r.Price,
		OldMoney:    r.OldMoney,
		Discount:    r.Discount,
		ItemLeft:    r.ItemLeft,
		MLSizes:     r.MLSizes,
		CreatedAt:   r.CreatedAt,
	}
}

// OpenDatabase connects to a sqlite file or a Postgres DSN and migrates the
// products table.
func OpenDatabase(backend, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch backend {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database backend %q", backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&productRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate products: %w", err)
	}
	return db, nil
}

type gormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGORMProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db, now: time.Now}
}

func (r *gormProductRepository) List(ctx context.Context) (domain.Products, error) {
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	products := make(domain.Products, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.product())
	}
	return products, nil
}

func (r *gormProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, &domain.PersistenceError{Op: "get", Message: err.Error()}
	}
	return rec.product(), nil
}

func (r *gormProductRepository) Create(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	product := &domain.Product{ID: domain.ProductID(uuid.NewString()), CreatedAt: r.now().UTC()}
	payload.ApplyTo(product)

	rec := recordFrom(product)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "create", Message: err.Error()}
	}
	return rec.product(), nil
}

func (r *gormProductRepository) Update(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	var updated *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec productRecord
		if err := tx.First(&rec, "id = ?", id.String()).Error; err != nil {
			return err
		}

		product := rec.product()
		payload.ApplyTo(product)
		rec = recordFrom(product)
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		updated = rec.product()
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "update", Message: err.Error()}
	}
	return updated, nil
}

func (r *gormProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	res := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id.String())
	if res.Error != nil {
		return &domain.PersistenceError{Op: "delete", Message: res.Error.Error()}
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
