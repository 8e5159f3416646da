package store

import (
	"context"
	"fmt"

	"github.com/pedrinsang/classboard/app/cfg"
)

// Open connects to the backend selected in the configuration.
func Open(ctx context.Context, c *cfg.Cfg) (Store, error) {
	switch c.Store {
	case cfg.StoreFirestore:
		if c.ServiceAccount == nil {
			return nil, fmt.Errorf("firestore store requires a service account")
		}
		return NewFirestoreStore(ctx, c.ServiceAccount)
	case cfg.StoreMongo:
		return NewMongoStore(ctx, c.MongoURI, c.MongoDatabase)
	case cfg.StoreSQLite:
		return NewSQLiteStore(ctx, c.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.Store)
	}
}
