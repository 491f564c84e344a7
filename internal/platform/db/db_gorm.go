// Package db はgormによるデータベース接続とスキーマ作成を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authentity "loan_backend/internal/feature/auth/domain/entity"
	loanadapters "loan_backend/internal/feature/loans/adapters"
	paymentadapters "loan_backend/internal/feature/payments/adapters"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
	// DefaultConnectTimeout は接続リトライを諦めるまでの既定時間です。
	DefaultConnectTimeout = 60 * time.Second

	// slowQueryThreshold を超えたクエリは警告として記録されます。
	slowQueryThreshold = 200 * time.Millisecond

	// mysqlTableOptions はメールアドレスの一意制約と検索を大文字小文字区別にします。
	mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
)

// NewGormLogger はgormのログをslogのハンドラーへ流します。
// SQLはプレースホルダのまま記録し、バインド値（パスワードハッシュやメールアドレス）は出力しません。
func NewGormLogger(h slog.Handler) logger.Interface {
	return logger.New(
		slog.NewLogLogger(h, slog.LevelWarn),
		logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

// ErrUnknownDriver は未対応のドライバー名が指定された場合に返されます。
var ErrUnknownDriver = errors.New("unknown database driver")

// Config はデータベース接続設定です。
type Config struct {
	Driver string `mapstructure:"driver"`
	// Path はSQLiteのファイルパスです（":memory:"も可）。
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	// InstanceName はCloud SQLのインスタンス接続名です。設定時はHost/Portより優先されます。
	InstanceName   string        `mapstructure:"instance"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// BuildDSN はドライバーに応じたDSN文字列を生成します。Driverが空の場合はMySQL形式です。
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" || cfg.Path == ":memory:" {
			return ":memory:"
		}
		return cfg.Path + "?_busy_timeout=5000"
	case DriverPostgres:
		host, port := cfg.Host, cfg.Port
		if cfg.InstanceName != "" {
			host, port = "/cloudsql/"+cfg.InstanceName, ""
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			host, cfg.User, cfg.Password, cfg.Name)
		if port != "" {
			dsn += " port=" + port
		}
		return dsn
	default:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	}
}

// Dialector はドライバー名とDSNからgormのDialectorを返します。
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL, "":
		return gmysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// ConnectWithRetry はopenerが成功するかtimeoutを過ぎるまで3秒間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従って接続し、必要ならマイグレーションを実行します。
// SQLiteは書き込みを直列化するため接続数を1に制限します。
func Open(cfg Config) (*gorm.DB, error) {
	if _, err := Dialector(cfg.Driver, ""); err != nil {
		return nil, err
	}
	dsn := BuildDSN(cfg)
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	db, err := ConnectWithRetry(dsn, timeout, func(dsn string) (*gorm.DB, error) {
		d, err := Dialector(cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		return gorm.Open(d, &gorm.Config{
			TranslateError: true,
			Logger:         NewGormLogger(slog.Default().Handler()),
		})
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	slog.Info("database connected", "driver", cfg.Driver)
	return db, nil
}

// Migrate はusers, loans, paymentsテーブルを作成・更新します。
// MySQLではバイナリ照合順序でテーブルを作成します。
func Migrate(db *gorm.DB) error {
	if opts := tableOptions(db.Dialector.Name()); opts != "" {
		db = db.Set("gorm:table_options", opts)
	}
	if err := db.AutoMigrate(
		&authentity.User{},
		&loanadapters.LoanModel{},
		&paymentadapters.PaymentModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// tableOptions はドライバーごとのCREATE TABLEオプションを返します。
func tableOptions(driver string) string {
	if driver == DriverMySQL {
		return mysqlTableOptions
	}
	return ""
}
