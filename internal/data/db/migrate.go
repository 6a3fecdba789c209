package db

import (
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
)

// AutoMigrateAll migrates in dependency order: dimensions, Book, then
// association and fact tables.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Author{},
		&types.Publisher{},
		&types.Category{},
		&types.Subject{},

		&types.Book{},

		&types.BookAuthor{},
		&types.BookPublisher{},
		&types.BookCategory{},
		&types.BookSubject{},

		&types.Price{},
		&types.BookSource{},
	)
}
