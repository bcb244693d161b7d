package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"djbooks_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Clients groups every backing store. Elastic, MinIO and Scylla are optional
// and stay nil when not configured.
type Clients struct {
	Postgres *sql.DB
	Redis    *redis.Client
	Elastic  *elasticsearch.Client
	MinIO    *minio.Client
	Scylla   *ScyllaManager
}

func ConnectDatabases(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var (
		c   Clients
		err error
	)

	if c.Postgres, err = ConnectPostgres(ctx, cfg.Postgres); err != nil {
		return nil, err
	}
	logger.Info("connected to postgres")

	if err := Migrate(ctx, c.Postgres); err != nil {
		return nil, err
	}

	if c.Redis, err = ConnectRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	if cfg.Elastic.URL != "" {
		if c.Elastic, err = ConnectElastic(cfg.Elastic); err != nil {
			logger.Warn("elasticsearch unavailable, search falls back to postgres", zap.Error(err))
			c.Elastic = nil
		} else {
			logger.Info("connected to elasticsearch")
		}
	}

	if cfg.MinIO.Endpoint != "" {
		if c.MinIO, err = ConnectMinIO(ctx, cfg.MinIO, logger); err != nil {
			return nil, err
		}
		logger.Info("connected to minio", zap.String("endpoint", cfg.MinIO.Endpoint))
	}

	if len(cfg.Scylla.Hosts) > 0 && cfg.Scylla.Hosts[0] != "" {
		if c.Scylla, err = InitScyllaDB(cfg.Scylla, logger); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

func (c *Clients) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}

// =============================================
// POSTGRES
// =============================================
func ConnectPostgres(ctx context.Context, cfg config.Postgres) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// =============================================
// REDIS
// =============================================
func ConnectRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func ConnectElastic(cfg config.Elastic) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	return client, nil
}

// =============================================
// MINIO
// =============================================
func ConnectMinIO(ctx context.Context, cfg config.MinIO, logger *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	return client, nil
}
