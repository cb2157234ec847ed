package api

import "github.com/shopspring/decimal"

type Member struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	JoinedAt    int64  `json:"joinedAt"`
}

type Group struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creatorId"`
	Name      string    `json:"name"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"createdAt"`
}

// MemberBalance totals a member's splits across a group's receipts.
type MemberBalance struct {
	UserID      string          `json:"userId"`
	TotalOwed   decimal.Decimal `json:"totalOwed"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// CreateGroupRequest creates a group owned by the caller. Members are emails
// or display names of existing users.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type RenameGroupRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type RenameGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// AddMemberRequest adds a user by email or display name.
type AddMemberRequest struct {
	GroupID    string `json:"groupId"`
	Identifier string `json:"identifier"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

// UpdateSplitRequest edits one member's split. CustomAmount fixes what the
// member owes; ClearCustom returns them to the even share. Status,
// AmountPaid and Notes are bookkeeping only.
type UpdateSplitRequest struct {
	ReceiptID    string           `json:"receiptId"`
	UserID       string           `json:"userId"`
	CustomAmount *decimal.Decimal `json:"customAmount,omitempty"`
	ClearCustom  bool             `json:"clearCustom,omitempty"`
	Status       *string          `json:"status,omitempty"`
	AmountPaid   *decimal.Decimal `json:"amountPaid,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

type UpdateSplitResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}
