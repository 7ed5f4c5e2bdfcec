package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultCatalogBaseURL is the Google Books volumes API root
	DefaultCatalogBaseURL = "https://www.googleapis.com/books/v1"
)
