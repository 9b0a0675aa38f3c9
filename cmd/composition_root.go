package cmd

import (
	"log/slog"

	httpin "tracking/internal/adapters/in/http"
	"tracking/internal/adapters/out/postgres"
	"tracking/internal/adapters/out/redisfanout"
	"tracking/internal/adapters/out/routing"
	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/ports"
	"tracking/internal/emitter"
	"tracking/internal/notify"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, the emitter and use case handlers together.
// All shared components (fan-out, route planner, emitter) are built once here;
// handlers are built per call since they are cheap value types.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	publisher  ports.EventPublisher
	subscriber ports.EventSubscriber
	planner    ports.RoutePlanner
	emitter    *emitter.Emitter
}

// NewCompositionRoot builds the object graph from the runtime configuration.
//
// Two deployment knobs select adapter implementations:
//   - GoogleMapsAPIKey: Directions-backed route planner vs straight-line legs
//   - RedisAddr: Redis pub/sub fan-out vs in-process broker
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
	}

	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
		})
		fanout := redisfanout.New(client, logger)
		root.publisher = fanout
		root.subscriber = fanout
	} else {
		broker := notify.NewBroker(logger)
		root.publisher = broker
		root.subscriber = broker
	}

	if config.GoogleMapsAPIKey != "" {
		planner, err := routing.NewGoogleRoutePlanner(config.GoogleMapsAPIKey)
		if err != nil {
			return nil, err
		}
		root.planner = planner
	} else {
		root.planner = routing.NewLinearRoutePlanner(0)
	}

	root.emitter = emitter.New(
		root.crossUoWFactory(),
		root.planner,
		root.publisher,
		logger,
		emitter.Config{
			Interval:                 config.TickInterval,
			ProximityThresholdMeters: config.ProximityThresholdMeters,
			MaxFailures:              config.MaxEmitFailures,
		},
	)

	return root, nil
}

// Emitter returns the shared position emitter.
func (c *CompositionRoot) Emitter() *emitter.Emitter {
	return c.emitter
}

// Subscriber returns the event stream used by the WebSocket bridge.
func (c *CompositionRoot) Subscriber() ports.EventSubscriber {
	return c.subscriber
}

// DeliveryUoWFactory returns the factory used by delivery-only consumers
// such as the stale delivery watchdog.
func (c *CompositionRoot) DeliveryUoWFactory() commands.DeliveryUoWFactory {
	return FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDeliveryCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDriverCommandHandler(f)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(c.crossUoWFactory(), c.emitter)
}

func (c *CompositionRoot) CreateStartDeliveryCommandHandler() commands.StartDeliveryCommandHandler {
	return commands.NewStartDeliveryCommandHandler(c.emitter)
}

func (c *CompositionRoot) CreateStopDeliveryCommandHandler() commands.StopDeliveryCommandHandler {
	return commands.NewStopDeliveryCommandHandler(c.emitter)
}

func (c *CompositionRoot) CreateResumeDeliveryCommandHandler() commands.ResumeDeliveryCommandHandler {
	return commands.NewResumeDeliveryCommandHandler(c.emitter)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(c.crossUoWFactory(), c.emitter, c.publisher)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.crossUoWFactory(), c.emitter, c.publisher)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the REST server with all handlers wired in.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	streamHandler := httpin.NewStreamHandler(c.subscriber, c.logger)

	return httpin.NewServer(
		c.CreateCreateDeliveryCommandHandler(),
		c.CreateCreateDriverCommandHandler(),
		c.CreateStartDeliveryCommandHandler(),
		c.CreateStopDeliveryCommandHandler(),
		c.CreateResumeDeliveryCommandHandler(),
		c.CreateConfirmDeliveryCommandHandler(),
		c.CreateCancelDeliveryCommandHandler(),
		c.CreateGetDeliveryQueryHandler(),
		c.CreateGetActiveDeliveriesQueryHandler(),
		streamHandler,
	)
}

func (c *CompositionRoot) crossUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
