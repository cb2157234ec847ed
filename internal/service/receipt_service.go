package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/notify"
	"github.com/mmynk/catalog/internal/splitting"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

var _ apiconnect.ReceiptServiceHandler = (*ReceiptService)(nil)

// ReceiptService implements the Connect ReceiptService. Group receipt writes
// regenerate splits in the same transaction; personal receipt writes refresh
// the owner's insights once committed.
type ReceiptService struct {
	store     storage.Store
	accounts  *accounts
	allocator *splitting.Allocator
	insights  Refresher
	publisher notify.Publisher
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store storage.Store, allocator *splitting.Allocator, insights Refresher, publisher notify.Publisher) *ReceiptService {
	return &ReceiptService{
		store:     store,
		accounts:  newAccounts(store),
		allocator: allocator,
		insights:  insights,
		publisher: publisher,
	}
}

// CreateReceipt creates a personal receipt, or a group receipt split evenly
// across the group's members.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("CreateReceipt request received",
		"merchant", m.Merchant,
		"group_id", m.GroupID,
		"items_count", len(m.Items),
	)

	date, err := parseOptionalDate("date", m.Date)
	if err != nil {
		return nil, connectError(err)
	}
	params := models.ReceiptParams{
		Merchant:      m.Merchant,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		Date:          date,
		PaymentMethod: m.PaymentMethod,
		Tax:           m.Tax,
		Tip:           m.Tip,
		TaxLast:       m.TaxLast,
		ImageURL:      m.ImageURL,
		Color:         m.Color,
		Items:         fromAPIItems(m.Items),
	}

	var group *models.Group
	var receipt *models.Receipt
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		if m.GroupID != "" {
			if m.FolderID != "" {
				return errs.NewValidationError("group receipts cannot be filed in a folder")
			}
			g, err := memberGroup(ctx, q, m.GroupID, userID)
			if err != nil {
				return err
			}
			group = g
			params.GroupID = g.ID
		} else {
			folder, err := ownedFolder(ctx, q, m.FolderID, userID)
			if err != nil {
				return err
			}
			params.UserID = userID
			params.FolderID = folder.ID
			if params.Color == "" {
				params.Color = folder.Color
			}
		}

		r, err := models.NewReceipt(params)
		if err != nil {
			return err
		}
		if err := q.CreateReceipt(ctx, r); err != nil {
			return err
		}
		if err := s.allocator.Recompute(ctx, q, r.ID, nil); err != nil {
			return err
		}
		receipt, err = q.GetReceipt(ctx, r.ID)
		return err
	})
	if err != nil {
		slog.Error("CreateReceipt failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Receipt created", "receipt_id", receipt.ID, "group_id", receipt.GroupID)
	if receipt.IsGroup() {
		publish(ctx, s.publisher, notify.ReceiptAdded(group, receipt, userID))
	} else {
		refreshInsights(ctx, s.insights, userID)
	}

	return connect.NewResponse(&api.CreateReceiptResponse{Receipt: toAPIReceipt(receipt)}), nil
}

// GetReceipt returns a receipt with its items and splits.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("receipt_id", req.Msg.ReceiptID); err != nil {
		return nil, err
	}

	receipt, err := s.store.GetReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("GetReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, connectError(err)
	}
	if err := checkReceiptAccess(ctx, s.store, receipt, userID); err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetReceiptResponse{Receipt: toAPIReceipt(receipt)}), nil
}

// UpdateReceipt applies the present fields. Group receipts keep their custom
// splits and re-split the rest of the new total.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, req *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	if err := requireField("receipt_id", m.ReceiptID); err != nil {
		return nil, err
	}
	slog.Info("UpdateReceipt request received", "receipt_id", m.ReceiptID)

	update := models.ReceiptUpdate{
		Merchant:      m.Merchant,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		PaymentMethod: m.PaymentMethod,
		Tax:           nullDecimal(m.Tax, m.ClearTax),
		Tip:           nullDecimal(m.Tip, m.ClearTip),
		TaxLast:       m.TaxLast,
		ImageURL:      m.ImageURL,
		Color:         m.Color,
	}
	if m.Date != nil {
		date, err := parseOptionalDate("date", *m.Date)
		if err != nil {
			return nil, connectError(err)
		}
		update.Date = &date
	}
	if m.Items != nil {
		items := fromAPIItems(*m.Items)
		update.Items = &items
	}

	var receipt *models.Receipt
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		r, err := q.GetReceipt(ctx, m.ReceiptID)
		if err != nil {
			return err
		}
		if err := checkReceiptAccess(ctx, q, r, userID); err != nil {
			return err
		}
		if m.FolderID != nil {
			if r.IsGroup() {
				return errs.NewValidationError("group receipts cannot be filed in a folder")
			}
			folder, err := ownedFolder(ctx, q, *m.FolderID, userID)
			if err != nil {
				return err
			}
			update.FolderID = &folder.ID
			if update.Color == nil {
				update.Color = &folder.Color
			}
		}

		overrides := splitting.DeriveOverrides(r.Splits)
		if err := update.Apply(r); err != nil {
			return err
		}
		if err := q.UpdateReceipt(ctx, r); err != nil {
			return err
		}
		if err := s.allocator.Recompute(ctx, q, r.ID, overrides); err != nil {
			return err
		}
		receipt, err = q.GetReceipt(ctx, r.ID)
		return err
	})
	if err != nil {
		slog.Error("UpdateReceipt failed", "receipt_id", m.ReceiptID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Receipt updated", "receipt_id", receipt.ID)
	if !receipt.IsGroup() {
		refreshInsights(ctx, s.insights, receipt.UserID)
	}

	return connect.NewResponse(&api.UpdateReceiptResponse{Receipt: toAPIReceipt(receipt)}), nil
}

// DeleteReceipt removes a receipt with its items and splits.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("receipt_id", req.Msg.ReceiptID); err != nil {
		return nil, err
	}
	slog.Info("DeleteReceipt request received", "receipt_id", req.Msg.ReceiptID)

	var personal bool
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		r, err := q.GetReceipt(ctx, req.Msg.ReceiptID)
		if err != nil {
			return err
		}
		if err := checkReceiptAccess(ctx, q, r, userID); err != nil {
			return err
		}
		personal = !r.IsGroup()
		return q.DeleteReceipt(ctx, r.ID)
	})
	if err != nil {
		slog.Error("DeleteReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Receipt deleted", "receipt_id", req.Msg.ReceiptID)
	if personal {
		refreshInsights(ctx, s.insights, userID)
	}
	return connect.NewResponse(&api.DeleteReceiptResponse{}), nil
}

// ListReceipts lists the caller's personal receipts newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg

	filter := storage.ReceiptFilter{Limit: int(m.Limit)}
	if filter.Since, err = parseOptionalDate("since", m.Since); err != nil {
		return nil, connectError(err)
	}
	if filter.Until, err = parseOptionalDate("until", m.Until); err != nil {
		return nil, connectError(err)
	}
	if m.FolderID != "" {
		folder, err := ownedFolder(ctx, s.store, m.FolderID, userID)
		if err != nil {
			return nil, connectError(err)
		}
		filter.FolderID = folder.ID
	}

	receipts, err := s.store.ListUserReceipts(ctx, userID, filter)
	if err != nil {
		slog.Error("ListReceipts failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("ListReceipts successful", "user_id", userID, "count", len(receipts))
	return connect.NewResponse(&api.ListReceiptsResponse{Receipts: toAPIReceipts(receipts)}), nil
}

// ListGroupReceipts lists a group's receipts with their splits.
func (s *ReceiptService) ListGroupReceipts(ctx context.Context, req *connect.Request[api.ListGroupReceiptsRequest]) (*connect.Response[api.ListGroupReceiptsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	if err := requireField("group_id", groupID); err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, groupID, userID); err != nil {
		return nil, connectError(err)
	}
	receipts, err := s.store.ListGroupReceipts(ctx, groupID)
	if err != nil {
		slog.Error("ListGroupReceipts failed - could not list receipts", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	splits, err := s.store.ListGroupSplits(ctx, groupID)
	if err != nil {
		slog.Error("ListGroupReceipts failed - could not list splits", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	byReceipt := make(map[string][]models.Split, len(receipts))
	for _, split := range splits {
		byReceipt[split.ReceiptID] = append(byReceipt[split.ReceiptID], split)
	}
	for _, r := range receipts {
		r.Splits = byReceipt[r.ID]
	}

	slog.Info("ListGroupReceipts successful", "group_id", groupID, "count", len(receipts))
	return connect.NewResponse(&api.ListGroupReceiptsResponse{Receipts: toAPIReceipts(receipts)}), nil
}
