package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"messenger-api/config/common"
	"messenger-api/config/logger"
	"messenger-api/entity"
)

type DBConfig struct {
	*gorm.DB
	*logger.AppLogger
}

func NewDB(config *common.Config, log *logger.AppLogger) (*DBConfig, error) {
	db, err := initDatabase(config, log)
	if err != nil {
		return nil, err
	}
	return &DBConfig{DB: db, AppLogger: log}, nil
}

func (db *DBConfig) GetDB() *gorm.DB {
	return db.DB
}

func (db *DBConfig) Close() error {
	conn, err := db.DB.DB()
	if err != nil {
		return err
	}
	return conn.Close()
}

// GormConfig is shared by the server and by tests so table names match.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "t_",
			SingularTable: true,
		},
	}
}

func Migrate(db *gorm.DB) error {
	var user entity.User
	var contact entity.Contact
	var message entity.Message
	var reaction entity.Reaction
	return db.AutoMigrate(&user, &contact, &message, &reaction)
}

func initDatabase(cfg *common.Config, log *logger.AppLogger) (*gorm.DB, error) {
	dbHost, dbUser, dbPassword, dbName, dbPort, timezone := cfg.GetDatabaseConfig()
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		dbHost, dbUser, dbPassword, dbName, dbPort, timezone,
	)
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		log.Http.Error.Error().Err(err).Str("host", dbHost).Msg("Failed to connect to database")
		return nil, fmt.Errorf("connect database: %w", err)
	}

	conn, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(100)
	conn.SetConnMaxLifetime(time.Second * time.Duration(300))

	log.Http.Info.Info().Str("host", dbHost).Str("database", dbName).Msg("Connection opened to database")
	return db, nil
}
