package application

import (
	"context"
	"strconv"

	"github.com/wms-platform/exception-service/internal/domain"
)

// resolveConsolidatedOrders reconciles the orders of a single type that
// are under active consolidation. On top of the single-line rules it
// reconciles each repick candidate against its consolidation slot:
// already placed slots move the item to PLACED instead of repicking, and
// applied repicks push a label update to the consolidation UI. Every
// order is persisted once at the end regardless of branch.
func (s *ExceptionService) resolveConsolidatedOrders(ctx context.Context, orders []*domain.Order, orderType domain.Type) {
	s.logger.Info("Resolving consolidatable order exceptions", "orderType", orderType, "orders", len(orders))

	resolved := 0

	for _, order := range orders {
		log := s.logger.WithTransactionID(order.TransactionID)

		log.Info("Looking up consolidation status", "orderType", orderType, "orderNumber", order.Number)

		record, err := s.consolidation.Status(ctx, order.Number, order.TransactionID)
		if err != nil {
			log.WithError(err).Warn("Failed to retrieve consolidation status; proceeding without it",
				"orderType", orderType, "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "status").Inc()
			record = nil
		}

		picksByItemID := make(map[string][]*domain.Pick)

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

		if record != nil {
			slotsByPickID, skipped := record.ItemsByPickID()
			for _, itemID := range skipped {
				log.Warn("Skipping consolidated item with unparseable identifier",
					"consolidatedItemId", itemID, "orderNumber", order.Number)
			}

			log.Info("Retrieved consolidatable order; checking for auto-repick candidates",
				"consolidatedItems", len(record.Items), "orderType", order.Type, "orderNumber", order.Number)

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

				// The repick candidate is the pick occupying a
				// consolidation slot.
				var candidate *domain.Pick
				var slot *domain.ConsolidatableOrderItem
				for _, pick := range picks {
					if matched, ok := slotsByPickID[pick.PickID]; ok {
						candidate, slot = pick, matched
						break
					}
				}

				if candidate == nil {
					log.Warn("No consolidated item matches any pick for order item",
						"itemId", item.ItemID, "orderType", order.Type, "orderNumber", order.Number)
					continue
				}

				if slot.Placed {
					item.Status = domain.ItemStatusPlaced
				}

				if s.maybeRepick(ctx, order, item, candidate, slot) {
					label := domain.Label{Text: domain.LabelRepickedInFlight}
					if err := s.consolidation.UpdateOrderItemLabel(ctx, strconv.Itoa(order.Number), slot.ItemID, label); err != nil {
						log.WithError(err).Warn("Failed to update consolidation label",
							"consolidatedItemId", slot.ItemID, "orderNumber", order.Number)
						s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "update_label").Inc()
					}
				}
			}
		} else {
			log.Warn("No consolidated order found", "orderType", order.Type, "orderNumber", order.Number)
		}

		if order.AllItemsPlaced() || order.AllItemsShipped() {
			order.MarkComplete(s.now().UTC())
			s.metrics.OrdersCompleted.WithLabelValues(string(order.Type)).Inc()
		}

		if err := s.orders.Save(ctx, order); err != nil {
			log.WithError(err).Warn("Failed to save order", "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("orders", "save").Inc()
		}
		s.metrics.OrdersReconciled.WithLabelValues(string(order.Type), "consolidatable").Inc()
		resolved++
	}

	s.logger.Info("Consolidatable order exceptions resolved", "orderType", orderType, "resolved", resolved, "orders", len(orders))
}
