package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wms-platform/exception-service/internal/domain"
	"github.com/wms-platform/exception-service/pkg/logging"
	"github.com/wms-platform/exception-service/pkg/metrics"
	"github.com/wms-platform/exception-service/pkg/workgroup"
)

// ExceptionService is the order-exception reconciliation engine. It
// sweeps WIP orders into resolution and folds pick-completion
// notifications back into per-item state, against four collaborators:
// the order repository, the WMS, consolidation, and the inbound queue.
type ExceptionService struct {
	orders        domain.OrderRepository
	wms           domain.WarehouseManagement
	consolidation domain.Consolidation
	queue         domain.MessageQueue

	config ExceptionConfiguration

	typePool       *workgroup.Pool
	resolverPool   *workgroup.Pool
	completionPool *workgroup.Pool
	pools          PoolConfig

	logger  *logging.Logger
	metrics *metrics.Metrics

	now func() time.Time
}

// NewExceptionService wires the engine. Pool sizes come exclusively from
// pools; the engine performs no concurrent dispatch beyond them.
func NewExceptionService(
	orders domain.OrderRepository,
	wms domain.WarehouseManagement,
	consolidation domain.Consolidation,
	queue domain.MessageQueue,
	config ExceptionConfiguration,
	pools PoolConfig,
	logger *logging.Logger,
	engineMetrics *metrics.Metrics,
) *ExceptionService {
	if engineMetrics == nil {
		engineMetrics = metrics.New(metrics.DefaultConfig("exception-service"))
	}

	return &ExceptionService{
		orders:         orders,
		wms:            wms,
		consolidation:  consolidation,
		queue:          queue,
		config:         config,
		typePool:       workgroup.NewPool(pools.TypeWorkers),
		resolverPool:   workgroup.NewPool(pools.ResolverWorkers),
		completionPool: workgroup.NewPool(pools.CompletionWorkers),
		pools:          pools,
		logger:         logger.WithComponent("exception-engine"),
		metrics:        engineMetrics,
		now:            time.Now,
	}
}

// Classify determines whether the order consolidates across lines: it is
// consolidatable when it holds an active reservation or when the
// consolidation collaborator knows it. The status lookup happens once
// per order; lookup failures propagate so the caller can isolate them.
func (s *ExceptionService) Classify(ctx context.Context, order *domain.Order) (bool, error) {
	record, err := s.consolidation.Status(ctx, order.Number, order.TransactionID)
	if err != nil {
		return false, fmt.Errorf("consolidation status lookup for order %d: %w", order.Number, err)
	}
	return order.HasReservation() || record != nil, nil
}

// maybeRepick evaluates a single repick candidate and, when eligible and
// allowed, applies the repick and writes the pick back to the WMS. The
// consolidated slot is nil on the single-line path. Returns true when a
// repick was applied.
func (s *ExceptionService) maybeRepick(ctx context.Context, order *domain.Order, item *domain.OrderItem, pick *domain.Pick, slot *domain.ConsolidatableOrderItem) bool {
	now := s.now().UTC()
	log := s.logger.WithTransactionID(order.TransactionID)

	worked := pick.WasWorked()
	windowPassed := now.After(pick.LastUpdate.Add(s.config.AutoStraggleWindow))
	deemedOut := pick.DeemedOut()
	placed := slot != nil && slot.Placed

	eligible := worked && item.Released && windowPassed && !deemedOut && !placed
	if !eligible {
		log.Info("No need to auto-repick",
			"pickId", pick.PickID,
			"itemId", item.ItemID,
			"orderType", order.Type,
			"orderNumber", order.Number,
			"pickWasWorked", worked,
			"itemReleased", item.Released,
			"windowPassed", windowPassed,
			"pickDeemedOut", deemedOut,
			"itemPlaced", placed,
			"lastUpdate", pick.LastUpdate,
		)
		return false
	}

	log.Warn("Preparing to auto-repick order item",
		"itemId", item.ItemID,
		"orderType", order.Type,
		"orderNumber", order.Number,
		"lastUpdate", pick.LastUpdate,
	)

	if !s.config.AutoStraggleEnabled {
		log.Info("Auto-repick eligible pick found but auto-repick is disabled",
			"pickId", pick.PickID,
			"itemId", item.ItemID,
			"orderNumber", order.Number,
		)
		return false
	}

	if item.NumStraggles >= s.config.MaxAutoStraggles {
		log.Warn("Auto-repick budget exhausted for order item",
			"itemId", item.ItemID,
			"orderType", order.Type,
			"orderNumber", order.Number,
			"numStraggles", item.NumStraggles,
			"maxAutoStraggles", s.config.MaxAutoStraggles,
		)
		s.metrics.RepicksExhausted.WithLabelValues(string(order.Type)).Inc()
		return false
	}

	pick.Repick(now)

	if err := s.wms.SavePick(ctx, domain.PickSaveRequest{Pick: pick, TransactionID: order.TransactionID}); err != nil {
		log.WithError(err).Warn("Failed to save repicked pick",
			"pickId", pick.PickID,
			"itemId", item.ItemID,
			"orderNumber", order.Number,
		)
		s.metrics.CollaboratorFailures.WithLabelValues("wms", "save_pick").Inc()
		return true
	}

	item.NumStraggles++
	s.metrics.RepicksApplied.WithLabelValues(string(order.Type)).Inc()
	return true
}
