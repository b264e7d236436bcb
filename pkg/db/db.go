package db

import (
	"time"

	"github.com/voltgrid/gc-registry/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// WriterDB is the handle to the write-of-record store. All mutations land
// here first; it is authoritative in the event of divergence from the mirror.
type WriterDB struct {
	*gorm.DB
}

// ReaderDB is the handle to the read mirror. It is eventually consistent with
// the writer; queries serving reads go here, mutations only arrive through
// the write-through layer.
type ReaderDB struct {
	*gorm.DB
}

// OpenWriter connects the write-of-record store.
func OpenWriter(cfg config.StoreConfig, log *zap.Logger) (WriterDB, error) {
	conn, err := open(cfg, log)
	if err != nil {
		return WriterDB{}, err
	}
	return WriterDB{conn}, nil
}

// OpenReader connects the read mirror store.
func OpenReader(cfg config.StoreConfig, log *zap.Logger) (ReaderDB, error) {
	conn, err := open(cfg, log)
	if err != nil {
		return ReaderDB{}, err
	}
	return ReaderDB{conn}, nil
}

func open(cfg config.StoreConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	log.Info("database connected",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return conn, nil
}
