package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wms-platform/exception-service/internal/domain"
)

// HandleExceptions runs one exception sweep: every supported order type
// is swept in parallel on the type pool, and the sweep blocks until all
// of them finish or fail. Disabled engine or a non-operational warehouse
// make the sweep a deliberate no-op.
func (s *ExceptionService) HandleExceptions(ctx context.Context) {
	s.logger.Info("Handling exception scenarios")

	if !s.config.Enabled {
		s.logger.Info("Exception handling is disabled; skipping sweep")
		s.metrics.SweepsTotal.WithLabelValues("skipped").Inc()
		return
	}

	if !s.config.WarehouseOperational {
		s.logger.Info("Warehouse is not operational; skipping sweep")
		s.metrics.SweepsTotal.WithLabelValues("skipped").Inc()
		return
	}

	group := s.typePool.NewGroup()

	for _, orderType := range s.config.SupportedOrderTypes {
		orderType := orderType
		group.Go(func() error {
			return s.handleExceptionsFor(ctx, orderType)
		})
	}

	s.logger.Info("Awaiting exception handling completion", "orderTypes", len(s.config.SupportedOrderTypes))

	completions, failures := group.Wait()
	for _, err := range failures {
		s.logger.WithError(err).Error("Exception sweep task failed")
	}

	s.logger.Info("Exception sweep complete", "orderTypes", completions, "failures", len(failures))
	s.metrics.SweepsTotal.WithLabelValues("completed").Inc()
}

// handleExceptionsFor sweeps one order type: WIP orders are loaded,
// classified into singleton and consolidatable buckets, and the two
// resolvers run as parallel tasks on the resolver pool.
func (s *ExceptionService) handleExceptionsFor(ctx context.Context, orderType domain.Type) error {
	started := s.now()
	defer func() {
		s.metrics.SweepDuration.WithLabelValues(string(orderType)).Observe(time.Since(started).Seconds())
	}()

	s.logger.Info("Handling order exceptions", "orderType", orderType)

	wipOrders, err := s.orders.Find(ctx, domain.SearchParameters{
		Types:    []domain.Type{orderType},
		Statuses: []domain.Status{domain.StatusWIP},
	})
	if err != nil {
		return fmt.Errorf("finding WIP %s orders: %w", orderType, err)
	}

	if len(wipOrders) == 0 {
		s.logger.Info("No WIP orders found", "orderType", orderType)
		return nil
	}

	s.logger.Info("Found WIP orders; preparing to handle exceptions", "orderType", orderType, "orders", len(wipOrders))

	var singletons []*domain.Order
	var consolidatable []*domain.Order

	for _, order := range wipOrders {
		isConsolidatable, err := s.Classify(ctx, order)
		if err != nil {
			// Degrade this order to reservation-only classification and
			// keep going; one collaborator failure never aborts the sweep.
			s.logger.WithError(err).Warn("Classification lookup failed; falling back to reservation check",
				"orderType", orderType, "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "status").Inc()
			isConsolidatable = order.HasReservation()
		}

		if isConsolidatable {
			consolidatable = append(consolidatable, order)
		} else {
			singletons = append(singletons, order)
		}
	}

	group := s.resolverPool.NewGroup()

	singles := singletons
	group.Go(func() error {
		s.resolveSingleLineOrders(ctx, singles, orderType)
		return nil
	})

	multis := consolidatable
	group.Go(func() error {
		s.resolveConsolidatedOrders(ctx, multis, orderType)
		return nil
	})

	_, failures := group.Wait()
	for _, err := range failures {
		s.logger.WithError(err).Error("Resolver task failed", "orderType", orderType)
	}

	return nil
}
