package library

import "context"

// Config selects a backend: MongoDB when MongoURI is set, otherwise files
// in Dir.
type Config struct {
	Dir      string
	MongoURI string
	Database string
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Library, error) {
	if cfg.MongoURI != "" {
		l, err := NewMongoLibrary(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	l, err := NewFileLibrary(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return l, nil
}
