package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/badoux/checkmail"

	"github.com/mmynk/catalog/internal/calculator"
	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/notify"
	"github.com/mmynk/catalog/internal/splitting"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService. Membership changes and
// custom split edits regenerate splits inside the same transaction.
type GroupService struct {
	store     storage.Store
	accounts  *accounts
	allocator *splitting.Allocator
	publisher notify.Publisher
	now       func() time.Time
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, allocator *splitting.Allocator, publisher notify.Publisher) *GroupService {
	return &GroupService{
		store:     store,
		accounts:  newAccounts(store),
		allocator: allocator,
		publisher: publisher,
		now:       time.Now,
	}
}

// resolveMember finds a user by email when the identifier looks like one,
// otherwise by display name.
func resolveMember(ctx context.Context, q storage.Querier, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errs.NewValidationError("member identifier is required")
	}
	if err := checkmail.ValidateFormat(identifier); err == nil {
		return q.FindUserByEmail(ctx, identifier)
	}
	return q.FindUserByDisplayName(ctx, identifier)
}

// CreateGroup creates a group owned by the caller with the listed members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group, err := models.NewGroup(userID, req.Msg.Name)
	if err != nil {
		return nil, connectError(err)
	}

	var added []*models.User
	var resp *api.Group
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		added = nil
		if err := q.CreateGroup(ctx, group); err != nil {
			return err
		}
		for _, identifier := range req.Msg.Members {
			user, err := resolveMember(ctx, q, identifier)
			if err != nil {
				return fmt.Errorf("member %q: %w", identifier, err)
			}
			if user.ID == userID {
				continue
			}
			if err := q.AddGroupMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: user.ID}); err != nil {
				return err
			}
			added = append(added, user)
		}
		created, err := q.GetGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		group = created
		resp, err = toAPIGroup(ctx, q, created)
		return err
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	for _, user := range added {
		publish(ctx, s.publisher, notify.MemberAdded(group, user, userID))
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: resp}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	resp, err := toAPIGroup(ctx, s.store, group)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: resp}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		if out[i], err = toAPIGroup(ctx, s.store, group); err != nil {
			return nil, connectError(err)
		}
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// RenameGroup changes a group's name. Any member may rename it.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connectError(errs.NewValidationError("group name is required"))
	}

	var resp *api.Group
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		if _, err := memberGroup(ctx, q, req.Msg.GroupID, userID); err != nil {
			return err
		}
		if err := q.RenameGroup(ctx, req.Msg.GroupID, name); err != nil {
			return err
		}
		group, err := q.GetGroup(ctx, req.Msg.GroupID)
		if err != nil {
			return err
		}
		resp, err = toAPIGroup(ctx, q, group)
		return err
	})
	if err != nil {
		slog.Error("RenameGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group renamed", "group_id", req.Msg.GroupID, "name", name)
	return connect.NewResponse(&api.RenameGroupResponse{Group: resp}), nil
}

// DeleteGroup removes a group with its receipts and subscriptions. Only the
// creator may delete it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		group, err := q.GetGroup(ctx, req.Msg.GroupID)
		if err != nil {
			return err
		}
		if group.CreatorID != userID {
			return fmt.Errorf("%w: only the creator can delete group %s", errs.ErrPermissionDenied, group.ID)
		}
		return q.DeleteGroup(ctx, group.ID)
	})
	if err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a user, found by email or display name, and re-splits every
// receipt of the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "identifier", req.Msg.Identifier)

	var group *models.Group
	var user *models.User
	var resp *api.Group
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		if _, err := memberGroup(ctx, q, req.Msg.GroupID, userID); err != nil {
			return err
		}
		u, err := resolveMember(ctx, q, req.Msg.Identifier)
		if err != nil {
			return err
		}
		user = u
		if err := q.AddGroupMember(ctx, &models.GroupMember{GroupID: req.Msg.GroupID, UserID: u.ID}); err != nil {
			return err
		}
		if err := s.allocator.RecomputeGroup(ctx, q, req.Msg.GroupID); err != nil {
			return err
		}
		if group, err = q.GetGroup(ctx, req.Msg.GroupID); err != nil {
			return err
		}
		resp, err = toAPIGroup(ctx, q, group)
		return err
	})
	if err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "user_id", user.ID)
	publish(ctx, s.publisher, notify.MemberAdded(group, user, userID))

	return connect.NewResponse(&api.AddMemberResponse{Group: resp}), nil
}

// RemoveMember removes a member and re-splits every receipt of the group.
// The creator can remove anyone but themselves; members can remove
// themselves.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", req.Msg.UserID); err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	var resp *api.Group
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		group, err := memberGroup(ctx, q, req.Msg.GroupID, userID)
		if err != nil {
			return err
		}
		if req.Msg.UserID == group.CreatorID {
			return errs.NewValidationError("the group creator cannot be removed")
		}
		if userID != group.CreatorID && userID != req.Msg.UserID {
			return fmt.Errorf("%w: only the creator can remove other members", errs.ErrPermissionDenied)
		}
		if err := q.RemoveGroupMember(ctx, group.ID, req.Msg.UserID); err != nil {
			return err
		}
		if err := s.allocator.RecomputeGroup(ctx, q, group.ID); err != nil {
			return err
		}
		if group, err = q.GetGroup(ctx, group.ID); err != nil {
			return err
		}
		resp, err = toAPIGroup(ctx, q, group)
		return err
	})
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{Group: resp}), nil
}

// UpdateSplit sets or clears a member's custom amount and records payment
// bookkeeping on their split.
func (s *GroupService) UpdateSplit(ctx context.Context, req *connect.Request[api.UpdateSplitRequest]) (*connect.Response[api.UpdateSplitResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	if err := requireField("receipt_id", m.ReceiptID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", m.UserID); err != nil {
		return nil, err
	}
	if m.CustomAmount != nil && m.ClearCustom {
		return nil, connectError(errs.NewValidationError("custom amount and clear custom are mutually exclusive"))
	}
	slog.Info("UpdateSplit request received", "receipt_id", m.ReceiptID, "user_id", m.UserID)

	var receipt *models.Receipt
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		r, err := q.GetReceipt(ctx, m.ReceiptID)
		if err != nil {
			return err
		}
		if !r.IsGroup() {
			return errs.NewValidationError("receipt %s is not a group receipt", r.ID)
		}
		if _, err := memberGroup(ctx, q, r.GroupID, userID); err != nil {
			return err
		}
		if findSplit(r.Splits, m.UserID) == nil {
			return fmt.Errorf("split for user %s on receipt %s: %w", m.UserID, r.ID, errs.ErrNotFound)
		}

		switch {
		case m.CustomAmount != nil:
			err = s.allocator.SetCustomSplit(ctx, q, r.ID, m.UserID, *m.CustomAmount)
		case m.ClearCustom:
			err = s.allocator.ClearCustomSplit(ctx, q, r.ID, m.UserID)
		}
		if err != nil {
			return err
		}

		if m.Status != nil || m.AmountPaid != nil || m.Notes != nil {
			splits, err := q.ListSplits(ctx, r.ID)
			if err != nil {
				return err
			}
			split := findSplit(splits, m.UserID)
			if split == nil {
				return fmt.Errorf("split for user %s on receipt %s: %w", m.UserID, r.ID, errs.ErrNotFound)
			}
			update := models.SplitUpdate{Status: m.Status, AmountPaid: m.AmountPaid, Notes: m.Notes}
			if err := update.Apply(split, s.now().Unix()); err != nil {
				return err
			}
			if err := q.UpdateSplit(ctx, split); err != nil {
				return err
			}
		}

		receipt, err = q.GetReceipt(ctx, r.ID)
		return err
	})
	if err != nil {
		slog.Error("UpdateSplit failed", "receipt_id", m.ReceiptID, "user_id", m.UserID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Split updated", "receipt_id", receipt.ID, "user_id", m.UserID)
	return connect.NewResponse(&api.UpdateSplitResponse{Receipt: toAPIReceipt(receipt)}), nil
}

func findSplit(splits []models.Split, userID string) *models.Split {
	for i := range splits {
		if splits[i].UserID == userID {
			return &splits[i]
		}
	}
	return nil
}

// GetGroupBalances totals what each member owes and has paid across the
// group's receipts.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	if err := requireField("group_id", groupID); err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	group, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		slog.Error("GetGroupBalances failed - group not accessible", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	splits, err := s.store.ListGroupSplits(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list splits", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	forBalance := make([]calculator.SplitForBalance, len(splits))
	for i, split := range splits {
		forBalance[i] = calculator.SplitForBalance{
			UserID:     split.UserID,
			AmountOwed: split.AmountOwed,
			AmountPaid: split.AmountPaid,
		}
	}
	balances := calculator.CalculateGroupBalances(group.MemberIDs(), forBalance)

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"splits_count", len(splits),
		"members_count", len(balances),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: toAPIBalances(balances)}), nil
}
