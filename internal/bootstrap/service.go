package bootstrap

import (
	"context"
	"fmt"

	http "github.com/corebank-platform/core/internal/adapters/http"
	"github.com/corebank-platform/core/internal/adapters/mongodb"
	pgaccount "github.com/corebank-platform/core/internal/adapters/postgres/account"
	pgcustomer "github.com/corebank-platform/core/internal/adapters/postgres/customer"
	pgoutbox "github.com/corebank-platform/core/internal/adapters/postgres/outbox"
	pgschedule "github.com/corebank-platform/core/internal/adapters/postgres/schedule"
	"github.com/corebank-platform/core/internal/adapters/rabbitmq"
	"github.com/corebank-platform/core/internal/adapters/redis"
	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/events"
	"github.com/corebank-platform/core/internal/pipeline"
	"github.com/corebank-platform/core/internal/relay"
	"github.com/corebank-platform/core/internal/scheduler"
	"github.com/corebank-platform/core/internal/services/command"
	"github.com/corebank-platform/core/internal/services/query"
	"github.com/corebank-platform/core/internal/uow"
	cfg "github.com/corebank-platform/core/pkg/config"
	"github.com/corebank-platform/core/pkg/launch"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mmongo"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
	"github.com/corebank-platform/core/platform/mrabbitmq"
	"github.com/corebank-platform/core/platform/mredis"
	"github.com/corebank-platform/core/platform/mzap"
)

// Service bundles every long-running part of the process: the HTTP server,
// the outbox relay and the scheduled-job runtime (spec.md §4.6, §4.7). Run
// starts all three under one Launcher, mirroring the teacher's
// Service.Run (_examples/LerianStudio-midaz/components/audit/internal/bootstrap/service.go).
type Service struct {
	Logger    mlog.Logger
	Telemetry *mopentelemetry.Telemetry

	server    *httpApp
	relay     *relay.Relay
	scheduler *scheduler.Scheduler
}

// Run starts the HTTP server, the outbox relay and the scheduler together
// and blocks until all three stop.
func (s *Service) Run() {
	launch.NewLauncher(
		launch.WithLogger(s.Logger),
		launch.RunApp("http", s.server),
		launch.RunApp("outbox-relay", relayApp{s.relay}),
		launch.RunApp("scheduler", schedulerApp{s.scheduler}),
	).Run()
}

// InitServices reads Config from the environment and wires the full
// composition root: connections, repositories, the Unit of Work, the
// command/query pipeline, the dispatcher, the relay, the scheduler and the
// HTTP router.
func InitServices() *Service {
	config := &Config{}
	if err := cfg.SetConfigFromEnvVars(config); err != nil {
		panic(err)
	}

	config.applyTunableDefaults()

	logger, err := mzap.New()
	if err != nil {
		panic(err)
	}

	telemetry := &mopentelemetry.Telemetry{ServiceName: config.OtelServiceName}

	pgConn := &mpostgres.Connection{
		ConnectionString: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			config.PostgresUser, config.PostgresPassword, config.PostgresHost, config.PostgresPort, config.PostgresName),
		MigrationsPath: config.MigrationsPath,
		DBName:         config.PostgresName,
		Logger:         logger,
	}

	mongoConn := &mmongo.Connection{
		ConnectionString: fmt.Sprintf("mongodb://%s:%s@%s:%s",
			config.MongoUser, config.MongoPassword, config.MongoHost, config.MongoPort),
		Database: config.MongoName,
		Logger:   logger,
	}

	redisConn := &mredis.Connection{ConnectionString: config.RedisConnectionString, Logger: logger}

	accounts := pgaccount.New(pgConn, telemetry)
	transactions := pgaccount.NewTransactionRepository(pgConn, telemetry)
	customers := pgcustomer.New(pgConn, telemetry)
	outbox := pgoutbox.New(pgConn, telemetry)
	schedules := pgschedule.New(pgConn, telemetry)

	metadataRepo := mongodb.New(mongoConn)

	leaseStore := redis.NewLeaseStore(redisConn)
	dashboardCache := redis.NewDashboardCache(redisConn)

	unitOfWork := uow.New(pgConn, accounts, transactions, customers, outbox, telemetry, logger)

	dispatcher := events.New(logger)

	var sink relay.ExternalSink

	if config.EnableExternalEventSink {
		rabbitConn := &mrabbitmq.Connection{
			ConnectionString: fmt.Sprintf("amqp://%s:%s@%s:%s/", config.RabbitMQUser, config.RabbitMQPassword, config.RabbitMQHost, config.RabbitMQPort),
			Exchange:         config.RabbitMQExchange,
			Logger:           logger,
		}
		sink = rabbitmq.New(rabbitConn, logger, telemetry)
	}

	outboxRelay := relay.New(outbox, dispatcher, sink, leaseStore, config.OutboxPollInterval, config.OutboxBatchSize, config.OutboxMaxRetries, logger, telemetry)

	sched := scheduler.New(schedules, leaseStore, dashboardCache, config.SchedulerWorkerCount, config.SchedulerRetryAttempts, logger, telemetry)
	registerJobs(context.Background(), sched, config.SchedulerScheduledJobs, accounts, transactions, customers, logger, telemetry)

	handlers := &http.Handlers{
		CreateCustomer: pipeline.Compose(
			command.NewCreateCustomerHandler(customers, unitOfWork),
			pipeline.Logging[command.CreateCustomerCommand, command.CreateCustomerResult](logger),
			pipeline.Validation[command.CreateCustomerCommand, command.CreateCustomerResult](),
			pipeline.DomainEvents[command.CreateCustomerCommand, command.CreateCustomerResult](dispatcher),
		),
		CreateAccount: pipeline.Compose(
			command.NewCreateAccountHandler(accounts, customers, unitOfWork),
			pipeline.Logging[command.CreateAccountCommand, command.CreateAccountResult](logger),
			pipeline.Validation[command.CreateAccountCommand, command.CreateAccountResult](),
			pipeline.DomainEvents[command.CreateAccountCommand, command.CreateAccountResult](dispatcher),
		),
		TransferMoney: pipeline.Compose(
			command.NewTransferMoneyHandler(accounts, unitOfWork),
			pipeline.Logging[command.TransferMoneyCommand, command.TransferMoneyResult](logger),
			pipeline.Validation[command.TransferMoneyCommand, command.TransferMoneyResult](),
			pipeline.DomainEvents[command.TransferMoneyCommand, command.TransferMoneyResult](dispatcher),
		),
		GetCustomers: pipeline.Compose(
			query.NewGetCustomersHandler(customers),
			pipeline.Logging[query.GetCustomersQuery, []*customer.Customer](logger),
			pipeline.Validation[query.GetCustomersQuery, []*customer.Customer](),
			pipeline.DomainEvents[query.GetCustomersQuery, []*customer.Customer](dispatcher),
		),
		GetCustomerDetails: pipeline.Compose(
			query.NewGetCustomerDetailsHandler(customers, accounts),
			pipeline.Logging[query.GetCustomerDetailsQuery, query.CustomerDetails](logger),
			pipeline.Validation[query.GetCustomerDetailsQuery, query.CustomerDetails](),
			pipeline.DomainEvents[query.GetCustomerDetailsQuery, query.CustomerDetails](dispatcher),
		),
		GetAccountDetails: pipeline.Compose(
			query.NewGetAccountDetailsHandler(accounts),
			pipeline.Logging[query.GetAccountDetailsQuery, *account.Account](logger),
			pipeline.Validation[query.GetAccountDetailsQuery, *account.Account](),
			pipeline.DomainEvents[query.GetAccountDetailsQuery, *account.Account](dispatcher),
		),
		GetTransactionHistory: pipeline.Compose(
			query.NewGetTransactionHistoryHandler(accounts, transactions),
			pipeline.Logging[query.GetTransactionHistoryQuery, []*account.Transaction](logger),
			pipeline.Validation[query.GetTransactionHistoryQuery, []*account.Transaction](),
			pipeline.DomainEvents[query.GetTransactionHistoryQuery, []*account.Transaction](dispatcher),
		),
	}

	router := http.NewRouter(logger, handlers, sched, metadataRepo)

	return &Service{
		Logger:    logger,
		Telemetry: telemetry,
		server:    &httpApp{app: router, address: config.ServerAddress, logger: logger},
		relay:     outboxRelay,
		scheduler: sched,
	}
}
