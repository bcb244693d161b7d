package database

import (
	"fmt"
	"sync"
	"time"

	"djbooks_back_end/internal/config"

	"github.com/gocql/gocql"
	"go.uber.org/zap"
)

// ScyllaManager keeps one session per keyspace and recreates a session that
// stopped answering.
type ScyllaManager struct {
	cfg      config.Scylla
	sessions map[string]*gocql.Session
	mu       sync.Mutex
	logger   *zap.Logger
}

func InitScyllaDB(cfg config.Scylla, logger *zap.Logger) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		cfg:      cfg,
		sessions: make(map[string]*gocql.Session),
		logger:   logger,
	}
	if _, err := sm.GetSession(cfg.Keyspace); err != nil {
		return nil, fmt.Errorf("init keyspace %s: %w", cfg.Keyspace, err)
	}
	return sm, nil
}

func (sm *ScyllaManager) cluster(keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(sm.cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if sm.cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: sm.cfg.Username,
			Password: sm.cfg.Password,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[keyspace]; ok {
		if err := session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return session, nil
		}
		session.Close()
	}

	session, err := sm.cluster(keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	sm.logger.Info("scylla session opened", zap.String("keyspace", keyspace))
	return session, nil
}

// UsersSession returns the session of the keyspace holding per-user data.
func (sm *ScyllaManager) UsersSession() (*gocql.Session, error) {
	return sm.GetSession(sm.cfg.Keyspace)
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		sm.logger.Info("scylla session closed", zap.String("keyspace", keyspace))
	}
	sm.sessions = map[string]*gocql.Session{}
}
