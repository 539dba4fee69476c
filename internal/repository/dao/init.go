package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Staff{},
		&Product{},
		&Bid{},
		&TourismSite{},
		&Booking{},
	)
	if err != nil {
		return err
	}

	// At most one winning bid per product.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_one_winner ON bids (product_id) WHERE is_winning`).Error
}

func dropAllTables(db *gorm.DB) error {
	var tableNames []string
	if err := db.Table("information_schema.tables").
		Where("table_schema = ?", "public").
		Pluck("table_name", &tableNames).Error; err != nil {
		return err
	}

	for _, tableName := range tableNames {
		if err := db.Exec("DROP TABLE IF EXISTS " + tableName + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
