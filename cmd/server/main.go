package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/flexprice/internal/api"
	v1 "github.com/flexprice/flexprice/internal/api/v1"
	"github.com/flexprice/flexprice/internal/clickhouse"
	"github.com/flexprice/flexprice/internal/config"
	"github.com/flexprice/flexprice/internal/domain/billingperiod"
	"github.com/flexprice/flexprice/internal/domain/customer"
	"github.com/flexprice/flexprice/internal/domain/invoice"
	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/domain/subscription"
	"github.com/flexprice/flexprice/internal/expression"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
	"github.com/flexprice/flexprice/internal/publisher"
	chrepo "github.com/flexprice/flexprice/internal/repository/clickhouse"
	pgrepo "github.com/flexprice/flexprice/internal/repository/postgres"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	time.Local = time.UTC
}

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewDB,
			clickhouse.NewClickHouseStore,
			newDomainEventPublisher,
			fx.Annotate(expression.NewCELEvaluator, fx.As(new(expression.Evaluator))),

			pgrepo.NewCustomerRepository,
			pgrepo.NewPlanRepository,
			pgrepo.NewSubscriptionRepository,
			pgrepo.NewBillingPeriodRepository,
			pgrepo.NewInvoiceRepository,
			pgrepo.NewCommitmentRepository,
			pgrepo.NewCreditRepository,
			pgrepo.NewMetricRepository,
			chrepo.NewEventRepository,

			service.NewCustomerManager,
			service.NewPlanManager,
			service.NewSubscriptionManager,
			service.NewEventIngestor,
			service.NewMetricRegistry,
			service.NewPricingEvaluator,
			service.NewCommitmentEngine,
			service.NewCreditEngine,
			newInvoiceAssembler,
			service.NewInvoiceManager,

			v1.NewCustomerHandler,
			v1.NewPlanHandler,
			v1.NewSubscriptionHandler,
			v1.NewEventHandler,
			v1.NewInvoiceHandler,
			newHandlers,

			api.NewRouter,
		),
		fx.Invoke(startAPIServer),
	).Run()
}

// newDomainEventPublisher wires the in-process gochannel transport as the
// production message.Publisher; swapping in watermill-kafka/v2 is a single
// fx.Provide change, not a code change, per publisher.NewDomainEventPublisher's
// transport-agnostic contract.
func newDomainEventPublisher(log *logger.Logger) publisher.DomainEventPublisher {
	pub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: false,
			OutputChannelBuffer:            256,
		},
		watermill.NewStdLogger(true, false),
	)
	return publisher.NewDomainEventPublisher(pub, log)
}

// newInvoiceAssembler adapts *postgres.DB to the assembler's narrow,
// unexported transactor interface.
func newInvoiceAssembler(
	db *postgres.DB,
	customers customer.Repository,
	plans plan.Repository,
	subs subscription.Repository,
	periods billingperiod.Repository,
	invoices invoice.Repository,
	metrics *service.MetricRegistry,
	pricing *service.PricingEvaluator,
	commitments *service.CommitmentEngine,
	credits *service.CreditEngine,
	events publisher.DomainEventPublisher,
	log *logger.Logger,
) *service.InvoiceAssembler {
	return service.NewInvoiceAssembler(db, customers, plans, subs, periods, invoices, metrics, pricing, commitments, credits, events, log)
}

func newHandlers(customerH *v1.CustomerHandler, planH *v1.PlanHandler, subscriptionH *v1.SubscriptionHandler, eventH *v1.EventHandler, invoiceH *v1.InvoiceHandler) *api.Handlers {
	return &api.Handlers{Customer: customerH, Plan: planH, Subscription: subscriptionH, Event: eventH, Invoice: invoiceH}
}

// startAPIServer mirrors the teacher's lifecycle-hook shape in
// cmd/server/main.go: the gin engine is started on OnStart and left to the
// process's own shutdown signal, since gin.Engine.Run blocks and has no
// graceful-shutdown hook of its own.
func startAPIServer(lc fx.Lifecycle, r *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting http server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Errorw("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping http server")
			return nil
		},
	})
}
