package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/sss-sync/console/internal/config"
	"github.com/sss-sync/console/internal/errors"
	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/auth/httpauth"
	"github.com/sss-sync/console/pkg/session"
)

// env is the loaded configuration and logger a command runs with.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv loads console.json and applies the global flag overrides.
func loadEnv(flags *globalFlags) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if flags.backend != "" {
		cfg.Storage.Backend = flags.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: newLogger(cfg.Log, os.Stderr)}, nil
}

// newLogger builds the slog logger described by lc.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStorage opens the configured session backend.
func openStorage(ctx context.Context, cfg *config.Config) (session.Storage, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil

	case config.BackendFile:
		return session.NewFileStorage(cfg.SessionFilePath()), nil

	case config.BackendKeyring:
		ks, err := session.OpenKeyring(sc.Keyring.Service)
		if err != nil {
			return nil, errors.New("C301").
				WithDetail("Service " + sc.Keyring.Service).
				WithSuggestion("Use --backend=file on systems without a credential store").
				Wrap(err)
		}
		return ks, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.New("C300").
				WithDetail("Redis at " + sc.Redis.Addr + " did not answer PING").
				Wrap(err)
		}
		return session.NewRedisStorage(client,
			session.WithRedisPrefix(sc.Redis.Prefix),
			session.WithOwnedClient(),
		), nil

	case config.BackendSQL:
		return openSQLStorage(ctx, sc.SQL)
	}

	return nil, errors.New("C102").WithDetail("storage.backend is " + sc.Backend)
}

func openSQLStorage(ctx context.Context, sc config.SQLStorageConfig) (session.Storage, error) {
	dialect := session.DialectSQLite
	if sc.Driver == config.DriverPgx {
		dialect = session.DialectPostgreSQL
	}

	db, err := sql.Open(sc.Driver, sc.DSN)
	if err != nil {
		return nil, errors.New("C300").WithDetail("Driver " + sc.Driver).Wrap(err)
	}
	if dialect == session.DialectSQLite {
		// one connection keeps ":memory:" databases alive and writes serialized
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.New("C300").WithDetail("Database did not answer ping").Wrap(err)
	}

	st, err := session.NewSQLStorage(db,
		session.WithSQLTableName(sc.Table),
		session.WithSQLDialect(dialect),
		session.WithOwnedDB(),
	)
	if err != nil {
		_ = db.Close()
		return nil, errors.New("C300").Wrap(err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		_ = st.Close()
		return nil, errors.New("C300").Wrap(err)
	}
	return st, nil
}

// openStore opens storage and builds a session store that logs in against
// the configured backend.
func (e *env) openStore(ctx context.Context) (*auth.Store, error) {
	return e.openStoreWith(ctx)
}

func (e *env) openStoreWith(ctx context.Context, opts ...auth.StoreOption) (*auth.Store, error) {
	st, err := openStorage(ctx, e.cfg)
	if err != nil {
		return nil, err
	}

	client := httpauth.New(e.cfg.API.BaseURL,
		httpauth.WithTimeout(e.cfg.Timeout()),
		httpauth.WithLogger(e.logger),
	)
	e.logger.Debug("session store opened",
		"backend", e.cfg.Storage.Backend,
		"login_url", client.LoginURL(),
	)
	return auth.NewStore(ctx, st, client, append([]auth.StoreOption{auth.WithLogger(e.logger)}, opts...)...), nil
}

// loginError maps a Login failure onto a console error code.
func loginError(err error) error {
	switch {
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		return errors.New("C201").Wrap(err)
	case stderrors.Is(err, auth.ErrMalformedResponse):
		return errors.New("C202").Wrap(err)
	default:
		return errors.New("C200").
			WithSuggestion("Check api.baseURL in console.json and that the sync backend is running").
			Wrap(err)
	}
}
