package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./openshelf.db"

	// DefaultUploadsDir is the default directory for uploaded images
	DefaultUploadsDir = "./images"
)
