package application

import (
	"context"

	"github.com/wms-platform/exception-service/internal/domain"
)

// resolveSingleLineOrders reconciles the non-consolidatable orders of a
// single type. Retrieval happens first for the whole batch; failures
// retrieving verification or picks for one order degrade that order to
// unverified-with-no-picks and never abort the batch. Every order is
// persisted once at the end of its resolution regardless of branch.
func (s *ExceptionService) resolveSingleLineOrders(ctx context.Context, orders []*domain.Order, orderType domain.Type) {
	s.logger.Info("Resolving single-line order exceptions", "orderType", orderType, "orders", len(orders))

	verificationsByOrderNumber := make(map[int]domain.OrderVerification)
	picksByItemID := make(map[string][]*domain.Pick)

	for _, order := range orders {
		log := s.logger.WithTransactionID(order.TransactionID)

		log.Info("Looking up order verification status", "orderType", orderType, "orderNumber", order.Number)

		verificationResp, err := s.wms.SearchVerifications(ctx, domain.VerificationSearchRequest{
			OrderNumber:   order.Number,
			TransactionID: order.TransactionID,
		})
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to retrieve order verifications; treating order as unverified",
				"orderType", orderType, "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("wms", "search_verifications").Inc()
		case len(verificationResp.Verifications) == 0:
			log.Warn("No order verifications found", "orderType", orderType, "orderNumber", order.Number)
		default:
			// The first successful record is the one that counts.
			for _, verification := range verificationResp.Verifications {
				if verification.Successful {
					verificationsByOrderNumber[order.Number] = verification
					break
				}
			}
		}

		log.Info("Looking up picks", "orderType", orderType, "orderNumber", order.Number)

		pickResp, err := s.wms.SearchPicks(ctx, domain.PickSearchRequest{
			OrderNumber:   order.Number,
			TransactionID: order.TransactionID,
		})
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to retrieve picks; proceeding without them",
				"orderType", orderType, "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("wms", "search_picks").Inc()
		case len(pickResp.Picks) == 0:
			log.Warn("No picks found for order", "orderType", orderType, "orderNumber", order.Number)
		default:
			for _, pick := range pickResp.Picks {
				picksByItemID[pick.OrderItemID] = append(picksByItemID[pick.OrderItemID], pick)
			}
		}
	}

	resolved := 0

	for _, order := range orders {
		log := s.logger.WithTransactionID(order.TransactionID)

		_, verified := verificationsByOrderNumber[order.Number]

		if verified {
			if order.AllItemsShipped() {
				order.MarkComplete(s.now().UTC())
				s.metrics.OrdersCompleted.WithLabelValues(string(order.Type)).Inc()
			} else {
				log.Info("Order scan verified but not all items shipped; leaving in WIP",
					"orderType", orderType, "orderNumber", order.Number)
			}
		} else {
			log.Info("Order has not completed scan verification; checking for auto-repick candidates",
				"orderType", orderType, "orderNumber", order.Number)

			for i := range order.Items {
				item := &order.Items[i]

				if !item.Repickable() {
					log.Info("Order item not in a repickable status; skipping",
						"itemId", item.ItemID, "orderNumber", order.Number, "status", item.Status)
					continue
				}

				picks := picksByItemID[item.ItemID]
				if len(picks) == 0 {
					log.Warn("No picks found for order item",
						"itemId", item.ItemID, "orderType", orderType, "orderNumber", order.Number)
					continue
				}

				mostRecent := domain.MostRecentlyUpdated(picks)
				s.maybeRepick(ctx, order, item, mostRecent, nil)
			}
		}

		if err := s.orders.Save(ctx, order); err != nil {
			log.WithError(err).Warn("Failed to save order", "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("orders", "save").Inc()
		}
		s.metrics.OrdersReconciled.WithLabelValues(string(order.Type), "singleton").Inc()
		resolved++
	}

	s.logger.Info("Single-line order exceptions resolved", "orderType", orderType, "resolved", resolved, "orders", len(orders))
}
