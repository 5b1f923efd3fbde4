// Package config builds the Config struct and wires every collaborator,
// in a flat-struct-plus-cli.Flag shape: one struct, package-level
// *cli.XFlag vars, a LoadConfig(*cli.Context) constructor, and a handful of
// private *Service() wiring methods that populate unexported fields.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coinshift-network/coinshiftd/internal/core/application"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	"github.com/coinshift-network/coinshiftd/internal/infrastructure/broadcaster"
	"github.com/coinshift-network/coinshiftd/internal/infrastructure/chainreader"
	"github.com/coinshift-network/coinshiftd/internal/infrastructure/db"
	"github.com/coinshift-network/coinshiftd/internal/infrastructure/health"
	"github.com/coinshift-network/coinshiftd/internal/infrastructure/l1rpc/bitcoincore"
	blockscheduler "github.com/coinshift-network/coinshiftd/internal/infrastructure/scheduler/block"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type supportedType map[string]struct{}

var supportedDbs = supportedType{"badger": {}}

// L1ChainConfig is one parent chain's RPC endpoint, supplied on the CLI as
// repeated --l1-chain flag values of the form CHAIN=host:user:pass. The
// first colon ends the host, so the host part carries no port.
type L1ChainConfig struct {
	Chain domain.ParentChainType
	Host  string
	User  string
	Pass  string
}

type Config struct {
	Datadir     string
	Port        uint32
	LogLevel    int
	DbType      string
	DbDir       string
	L1Chains    []L1ChainConfig
	HealthCheckInterval time.Duration

	repo      ports.RepoManager
	svc       application.Service
	clients   map[domain.ParentChainType]ports.L1RPCClient
	connector *application.Connector
	observer  *application.Observer
	scheduler ports.SchedulerService
	health    *health.Checker
}

func (c *Config) String() string {
	clone := *c
	j, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(j)
}

var (
	defaultDatadir  = defaultAppDataDir("coinshiftd")
	DefaultPort     = 7080
	defaultDbType   = "badger"
	defaultLogLevel = 4
)

func env(values ...string) []string {
	envs := make([]string, len(values))
	for i, v := range values {
		envs[i] = fmt.Sprintf("COINSHIFTD_%s", v)
	}
	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}
	Port = &cli.UintFlag{
		Usage: "Port to listen on for the JSON-RPC interface",
		Name:  "port", EnvVars: env("PORT"),
		Value: uint(DefaultPort),
	}
	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}
	DbType = &cli.StringFlag{
		Usage: "Database type (badger)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}
	L1Chain = &cli.StringSliceFlag{
		Usage: "Parent chain RPC endpoint, repeatable: CHAIN=host:user:pass (CHAIN one of BTC, BCH, LTC, Signet, Regtest)",
		Name:  "l1-chain", EnvVars: env("L1_CHAIN"),
	}
	HealthCheckInterval = &cli.DurationFlag{
		Usage: "Interval between ambient L1 RPC health checks",
		Name:  "l1-health-interval", EnvVars: env("L1_HEALTH_INTERVAL"),
		Value: 30 * time.Second,
	}
)

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := makeDirectoryIfNotExists(c.String(Datadir.Name)); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	chains, err := parseL1Chains(c.StringSlice(L1Chain.Name))
	if err != nil {
		return nil, err
	}

	return &Config{
		Datadir:             c.String(Datadir.Name),
		Port:                uint32(c.Uint(Port.Name)),
		LogLevel:            c.Int(LogLevel.Name),
		DbType:              c.String(DbType.Name),
		DbDir:               c.String(Datadir.Name) + "/db",
		L1Chains:            chains,
		HealthCheckInterval: c.Duration(HealthCheckInterval.Name),
	}, nil
}

func parseL1Chains(raw []string) ([]L1ChainConfig, error) {
	chains := make([]L1ChainConfig, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --l1-chain entry %q, expected CHAIN=host:user:pass", entry)
		}
		chain, err := domain.ParseParentChainType(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid --l1-chain entry %q: %w", entry, err)
		}

		hup := strings.SplitN(parts[1], ":", 3)
		if len(hup) != 3 {
			return nil, fmt.Errorf("invalid --l1-chain entry %q, expected CHAIN=host:user:pass", entry)
		}
		chains = append(chains, L1ChainConfig{Chain: chain, Host: hup[0], User: hup[1], Pass: hup[2]})
	}
	return chains, nil
}

// Validate fails fast on
// anything the cli flags alone cannot catch.
func (c *Config) Validate() error {
	if _, ok := supportedDbs[c.DbType]; !ok {
		return fmt.Errorf("unsupported db type: %s", c.DbType)
	}
	seen := make(map[domain.ParentChainType]struct{})
	for _, ch := range c.L1Chains {
		if _, dup := seen[ch.Chain]; dup {
			return fmt.Errorf("duplicate --l1-chain entry for %s", ch.Chain.String())
		}
		seen[ch.Chain] = struct{}{}
	}
	return nil
}

func (c *Config) repoManager() error {
	logger := log.New()
	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: []interface{}{c.DbDir, logger},
	})
	if err != nil {
		return err
	}
	c.repo = svc
	return nil
}

func (c *Config) l1Clients() error {
	clients := make(map[domain.ParentChainType]ports.L1RPCClient, len(c.L1Chains))
	for _, ch := range c.L1Chains {
		params := chainParams(ch.Chain)
		client, err := bitcoincore.New(bitcoincore.Config{
			Host: ch.Host, User: ch.User, Pass: ch.Pass, DisableTLS: true, Params: params,
		})
		if err != nil {
			return fmt.Errorf("failed to create L1 RPC client for %s: %w", ch.Chain.String(), err)
		}
		clients[ch.Chain] = client
	}
	c.clients = clients
	return nil
}

func chainParams(chain domain.ParentChainType) *chaincfg.Params {
	switch chain {
	case domain.Signet:
		return &chaincfg.SigNetParams
	case domain.Regtest:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

func (c *Config) schedulerService() error {
	c.scheduler = blockscheduler.NewScheduler()
	return nil
}

func (c *Config) appService() error {
	if c.repo == nil {
		return fmt.Errorf("repo manager not set")
	}
	if c.scheduler == nil {
		return fmt.Errorf("scheduler not set")
	}

	validator := application.NewValidator(c.repo.Swaps(), c.repo.Locks())
	c.connector = application.NewConnector(c.repo.Swaps(), c.repo.Locks(), validator, c.scheduler)
	c.observer = application.NewObserver(c.repo.Swaps(), c.clients)

	c.scheduler.SetPegAdvanceHandler(c.observer.Tick)

	// Recovery replays genesis-to-tip through its own scheduler-free
	// connector so ConnectBlock's mainchain-tip-advance branch never fires
	// during replay; the real connector's scheduler already carries the
	// live Observer.Tick handler and must stay out of this path.
	recoveryConnector := application.NewConnector(c.repo.Swaps(), c.repo.Locks(), validator, nil)
	recovery := application.NewRecovery(c.repo.Swaps(), c.repo.Locks(), chainreader.NewUnconfigured(), recoveryConnector)
	c.svc = application.NewService(c.repo.Swaps(), c.repo.Locks(), broadcaster.NewLogOnly(), c.clients, recovery)

	c.health = health.NewChecker(c.clients, c.HealthCheckInterval)
	return nil
}

// AppService returns the wired C10 service, initializing every collaborator
// on first call, then caching it for subsequent calls.
func (c *Config) AppService() (application.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	if err := c.repoManager(); err != nil {
		return nil, err
	}
	if err := c.l1Clients(); err != nil {
		return nil, err
	}
	if err := c.schedulerService(); err != nil {
		return nil, err
	}
	if err := c.appService(); err != nil {
		return nil, err
	}
	if err := c.health.Start(); err != nil {
		return nil, fmt.Errorf("failed to start L1 health checker: %w", err)
	}
	return c.svc, nil
}

// Connector exposes C6, for the two-way-peg collaborator to drive block
// connect/disconnect directly.
func (c *Config) Connector() *application.Connector {
	return c.connector
}

// Scheduler exposes C8, for the two-way-peg collaborator to call
// OnMainchainTipAdvance on.
func (c *Config) Scheduler() ports.SchedulerService {
	return c.scheduler
}

func (c *Config) Close() {
	if c.health != nil {
		c.health.Stop()
	}
	if c.repo != nil {
		c.repo.Close()
	}
}

func defaultAppDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return home + "/." + appName
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	return nil
}
