package fakecatalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/pkg/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errNotFound = errors.New("beer not found")

// beerRow is the persisted form of a beer. Price is kept as text so the
// exact decimal digits survive the round trip through SQLite.
type beerRow struct {
	ID             string `gorm:"primaryKey"`
	Seq            int64  `gorm:"index"`
	BeerName       string `gorm:"index"`
	BeerStyle      string
	UPC            string `gorm:"index"`
	Price          string
	QuantityOnHand *int
	CreatedDate    time.Time
	LastUpdateDate time.Time
}

func (beerRow) TableName() string { return "beers" }

type listQuery struct {
	Page  int
	Size  int
	Name  string
	Style string
}

type store struct {
	db  *gorm.DB
	seq atomic.Int64
}

func openStore() (*store, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	// Every connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&beerRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate beers: %w", err)
	}
	return &store{db: db}, nil
}

func (s *store) close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *store) create(ctx context.Context, b model.Beer) (model.Beer, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.New()
	if b.ID != nil && *b.ID != uuid.Nil {
		id = *b.ID
	}
	b.ID = &id
	b.CreatedDate = &now
	b.LastUpdateDate = &now

	row := toRow(b)
	row.Seq = s.seq.Add(1)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Beer{}, err
	}
	return b, nil
}

func (s *store) get(ctx context.Context, id uuid.UUID) (model.Beer, error) {
	var row beerRow
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error
	return fromResult(row, err)
}

func (s *store) getByUPC(ctx context.Context, upc string) (model.Beer, error) {
	var row beerRow
	err := s.db.WithContext(ctx).Where("upc = ?", upc).Order("seq asc").First(&row).Error
	return fromResult(row, err)
}

func (s *store) update(ctx context.Context, id uuid.UUID, b model.Beer) error {
	res := s.db.WithContext(ctx).Model(&beerRow{}).Where("id = ?", id.String()).Updates(map[string]any{
		"beer_name":        b.BeerName,
		"beer_style":       b.BeerStyle,
		"upc":              b.UPC,
		"price":            b.Price.String(),
		"quantity_on_hand": b.QuantityOnHand,
		"last_update_date": time.Now().UTC().Truncate(time.Millisecond),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

func (s *store) delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&beerRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

func (s *store) list(ctx context.Context, q listQuery) ([]model.Beer, int64, error) {
	filtered := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&beerRow{})
		if q.Name != "" {
			db = db.Where("beer_name LIKE ?", "%"+q.Name+"%")
		}
		if q.Style != "" {
			db = db.Where("beer_style = ?", q.Style)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []beerRow
	if err := filtered().Order("seq asc").Offset((q.Page - 1) * q.Size).Limit(q.Size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]model.Beer, 0, len(rows))
	for _, row := range rows {
		b, err := fromRow(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, nil
}

func toRow(b model.Beer) beerRow {
	row := beerRow{
		BeerName:       b.BeerName,
		BeerStyle:      b.BeerStyle,
		UPC:            b.UPC,
		Price:          b.Price.String(),
		QuantityOnHand: b.QuantityOnHand,
	}
	if b.ID != nil {
		row.ID = b.ID.String()
	}
	if b.CreatedDate != nil {
		row.CreatedDate = *b.CreatedDate
	}
	if b.LastUpdateDate != nil {
		row.LastUpdateDate = *b.LastUpdateDate
	}
	return row
}

func fromResult(row beerRow, err error) (model.Beer, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Beer{}, errNotFound
	}
	if err != nil {
		return model.Beer{}, err
	}
	return fromRow(row)
}

func fromRow(row beerRow) (model.Beer, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return model.Beer{}, fmt.Errorf("stored id %q: %w", row.ID, err)
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return model.Beer{}, fmt.Errorf("stored price %q: %w", row.Price, err)
	}
	created := row.CreatedDate.UTC()
	updated := row.LastUpdateDate.UTC()
	return model.Beer{
		ID:             &id,
		BeerName:       row.BeerName,
		BeerStyle:      row.BeerStyle,
		UPC:            row.UPC,
		Price:          price,
		QuantityOnHand: row.QuantityOnHand,
		CreatedDate:    &created,
		LastUpdateDate: &updated,
	}, nil
}
