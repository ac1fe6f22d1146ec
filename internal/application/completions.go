package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wms-platform/exception-service/internal/domain"
)

// PickCompletionNotification is the decoded form of an inbound
// pick-completed message. Payload fields beyond the two the engine acts
// on ride along opaquely instead of being rejected.
type PickCompletionNotification struct {
	PickID    int
	Straggler bool
	Extra     map[string]json.RawMessage
}

// UnmarshalJSON keeps unknown fields rather than dropping them; the
// upstream producer adds fields without notice.
func (n *PickCompletionNotification) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &n.PickID); err != nil {
			return err
		}
		delete(fields, "id")
	}

	if raw, ok := fields["straggler"]; ok {
		if err := json.Unmarshal(raw, &n.Straggler); err != nil {
			return err
		}
		delete(fields, "straggler")
	}

	n.Extra = fields
	return nil
}

// ProcessCompletedPicks drains the inbound queue as a snapshot,
// partitions the batch across the completion pool, and blocks until all
// chunks are processed. Gated by the same enabled/operational checks as
// the sweep.
func (s *ExceptionService) ProcessCompletedPicks(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info("Exception handling is disabled; skipping pick-completion processing")
		return
	}

	if !s.config.WarehouseOperational {
		s.logger.Info("Warehouse is not operational; skipping pick-completion processing")
		return
	}

	s.logger.Info("Processing completed picks")

	messages, err := s.queue.Drain(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to drain pick-completion queue")
		s.metrics.CollaboratorFailures.WithLabelValues("queue", "drain").Inc()
		return
	}

	batches := batchMessages(messages, s.pools.CompletionWorkers)
	if len(batches) == 0 {
		s.logger.Info("No pick-completion messages to process")
		return
	}

	group := s.completionPool.NewGroup()

	for _, batch := range batches {
		batch := batch
		s.metrics.CompletionBatches.Inc()
		group.Go(func() error {
			s.processCompletionBatch(ctx, batch)
			return nil
		})
	}

	completions, failures := group.Wait()
	for _, err := range failures {
		s.logger.WithError(err).Error("Pick-completion batch failed")
	}

	s.logger.Info("Completed pick processing finished", "batches", completions, "messages", len(messages), "failures", len(failures))
}

// batchMessages partitions a message snapshot into near-equal chunks for
// at most workers parallel handlers. When the per-worker share is a
// single message or less the whole snapshot becomes one chunk.
func batchMessages(messages []domain.Message, workers int) [][]domain.Message {
	if len(messages) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	batchSize := len(messages) / workers
	if batchSize <= 1 {
		return [][]domain.Message{messages}
	}

	var batches [][]domain.Message
	for from := 0; from < len(messages); from += batchSize {
		to := from + batchSize
		if to > len(messages) {
			to = len(messages)
		}
		batches = append(batches, messages[from:to])
	}
	return batches
}

// processCompletionBatch handles one chunk of the snapshot under a fresh
// transaction id: decode the notifications, fetch the referenced picks in
// one batched search, fetch their owning orders, and fold each order's
// items forward.
func (s *ExceptionService) processCompletionBatch(ctx context.Context, messages []domain.Message) {
	transactionID := uuid.NewString()
	log := s.logger.WithTransactionID(transactionID)

	notifications := s.decodeNotifications(messages)
	if len(notifications) == 0 {
		return
	}

	pickIDSet := make(map[int]struct{}, len(notifications))
	for _, notification := range notifications {
		pickIDSet[notification.PickID] = struct{}{}
	}
	pickIDs := make([]int, 0, len(pickIDSet))
	for pickID := range pickIDSet {
		pickIDs = append(pickIDs, pickID)
	}

	pickResp, err := s.wms.SearchPicks(ctx, domain.PickSearchRequest{
		PickIDs:       pickIDs,
		TransactionID: transactionID,
	})
	if err != nil {
		log.WithError(err).Error("Failed to search for completed picks")
		s.metrics.CollaboratorFailures.WithLabelValues("wms", "search_picks").Inc()
		return
	}

	if len(pickResp.Picks) == 0 {
		return
	}

	log.Info("Found completed picks; looking up the associated orders", "picks", len(pickResp.Picks))

	orderNumberSet := make(map[int]struct{})
	picksByItemID := make(map[string][]*domain.Pick)
	for _, pick := range pickResp.Picks {
		orderNumberSet[pick.OrderNumber] = struct{}{}
		picksByItemID[pick.OrderItemID] = append(picksByItemID[pick.OrderItemID], pick)
	}
	orderNumbers := make([]int, 0, len(orderNumberSet))
	for orderNumber := range orderNumberSet {
		orderNumbers = append(orderNumbers, orderNumber)
	}

	orders, err := s.orders.Find(ctx, domain.SearchParameters{OrderNumbers: orderNumbers})
	if err != nil {
		log.WithError(err).Error("Failed to find orders for completed picks")
		s.metrics.CollaboratorFailures.WithLabelValues("orders", "find").Inc()
		return
	}

	if len(orders) == 0 {
		log.Warn("Found no orders for the completed picks", "picks", len(pickResp.Picks))
		return
	}

	for _, order := range orders {
		s.handlePickCompletion(ctx, order, picksByItemID)
	}
}

// decodeNotifications decodes the chunk's message bodies. A body missing
// its trailing closing brace gets exactly one appended before decoding;
// bodies that still fail to decode are dropped without aborting the
// chunk.
func (s *ExceptionService) decodeNotifications(messages []domain.Message) []PickCompletionNotification {
	notifications := make([]PickCompletionNotification, 0, len(messages))

	for _, message := range messages {
		body := message.Body
		if body == "" {
			continue
		}

		// Some upstream producers truncate the final brace off the
		// payload. See incident WMS-1234.
		if !strings.HasSuffix(body, "}") {
			body += "}"
			s.metrics.CompletionMessages.WithLabelValues("repaired").Inc()
		}

		var notification PickCompletionNotification
		if err := json.Unmarshal([]byte(body), &notification); err != nil {
			s.logger.WithError(err).Error("Failed to parse pick-completion notification", "messageId", message.MessageID)
			s.metrics.CompletionMessages.WithLabelValues("dropped").Inc()
			continue
		}

		s.metrics.CompletionMessages.WithLabelValues("processed").Inc()
		notifications = append(notifications, notification)
	}

	return notifications
}

// handlePickCompletion advances one order's items from the picks in the
// batch, pushing consolidation label updates where one was computed and
// persisting each mutated item through the order repository.
func (s *ExceptionService) handlePickCompletion(ctx context.Context, order *domain.Order, picksByItemID map[string][]*domain.Pick) {
	log := s.logger.WithTransactionID(order.TransactionID)

	log.Info("Processing pick completion", "orderType", order.Type, "orderNumber", order.Number)

	record, err := s.consolidation.Status(ctx, order.Number, order.TransactionID)
	if err != nil {
		log.WithError(err).Warn("Failed to retrieve consolidation status; treating order as non-consolidatable",
			"orderNumber", order.Number)
		s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "status").Inc()
		record = nil
	}

	consolidatable := order.HasReservation() || record != nil

	for i := range order.Items {
		item := &order.Items[i]

		picks := picksByItemID[item.ItemID]
		if len(picks) == 0 {
			continue
		}

		log.Info("Found picks for order item", "picks", len(picks), "itemId", item.ItemID,
			"orderType", order.Type, "orderNumber", order.Number)

		mostRecent := domain.MostRecentlyCreated(picks)

		var label string
		if mostRecent.HandledByStraggler() {
			item.Status = domain.ItemStatusStraggled
			label = s.classifyDetermination(ctx, order, mostRecent, consolidatable)
		} else if mostRecent.Status != nil {
			switch *mostRecent.Status {
			case domain.PickStatusWIP, domain.PickStatusPicked:
				label = domain.LabelPicked
				item.Status = domain.ItemStatusPicked
			case domain.PickStatusAssigned, domain.PickStatusDelivered, domain.PickStatusSuspended:
				label = mostRecent.Status.Description()
			}
		}

		if consolidatable && label != "" {
			orderNumber := strconv.Itoa(mostRecent.OrderNumber)
			consolidatedItemID := strconv.Itoa(mostRecent.PickID)
			if err := s.consolidation.UpdateOrderItemLabel(ctx, orderNumber, consolidatedItemID, domain.Label{Text: label}); err != nil {
				log.WithError(err).Warn("Failed to update consolidation label",
					"consolidatedItemId", consolidatedItemID, "orderNumber", order.Number)
				s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "update_label").Inc()
			}
		}

		if err := s.orders.SaveItem(ctx, item); err != nil {
			log.WithError(err).Warn("Failed to save order item", "itemId", item.ItemID, "orderNumber", order.Number)
			s.metrics.CollaboratorFailures.WithLabelValues("orders", "save_item").Inc()
		}
	}
}

// classifyDetermination maps the straggler specialist's free-text
// determination onto a consolidation label. The substring checks are
// load-bearing compatibility with the specialist tooling; do not tidy
// them into an enum.
func (s *ExceptionService) classifyDetermination(ctx context.Context, order *domain.Order, pick *domain.Pick, consolidatable bool) string {
	log := s.logger.WithTransactionID(order.TransactionID)

	determination := pick.FulfillmentStatus
	if determination == "" || determination == ": " || strings.EqualFold(determination, "unknown") {
		return domain.LabelRepickPending
	}

	log.Info("Straggler determination received", "pickId", pick.PickID, "determination", determination)

	lowered := strings.ToLower(determination)

	isPartial := strings.Contains(lowered, "partial")
	isOut := strings.Contains(lowered, "out")

	switch {
	case isPartial, isOut:
		if !consolidatable {
			log.Warn("Straggler determined order was out or partially available; holding in consolidation",
				"orderType", order.Type, "orderNumber", order.Number)
			if err := s.consolidation.Hold(ctx, order.Number, order.TransactionID); err != nil {
				log.WithError(err).Warn("Failed to hold order in consolidation", "orderNumber", order.Number)
				s.metrics.CollaboratorFailures.WithLabelValues("consolidation", "hold").Inc()
			}
		}
		if isPartial {
			return domain.LabelPartial
		}
		return domain.LabelOut
	case strings.Contains(lowered, "wip"):
		return domain.LabelRepickedComplete
	default:
		return determination
	}
}
