package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/glebarez/sqlite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections. Mongo is nil unless posts are kept
// in MongoDB.
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
}

// InitDB opens the relational store and, when configured, MongoDB.
func InitDB(cfg *Config, logger *zap.Logger) (*DB, error) {
	dsn := cfg.PostgresUrl
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	sqlDB, err := OpenSQL(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}
	logger.Info("connected to relational store", zap.String("driver", cfg.DBDriver))

	db := &DB{SQL: sqlDB}
	if cfg.PostStore == "mongo" {
		client, err := initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB(logger)
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		db.Mongo = client
	}
	return db, nil
}

// OpenSQL opens a gorm connection for driver ("postgres" or "sqlite") and
// pings it. Duplicate-key errors are translated to gorm.ErrDuplicatedKey.
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqliteDSN(dsn)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer at a time; also keeps an in-memory database alive
		sqlDB.SetMaxOpenConns(1)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.SavedPost{},
		&models.Notification{},
	)
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB(logger *zap.Logger) {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			logger.Error("get sql handle", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			logger.Error("close relational store", zap.Error(err))
		} else {
			logger.Info("relational store closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			logger.Error("close MongoDB", zap.Error(err))
		} else {
			logger.Info("MongoDB connection closed")
		}
	}
}
