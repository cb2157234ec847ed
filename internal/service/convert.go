package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/calculator"
	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/insights"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPINotification(n *models.Notification) *api.Notification {
	return &api.Notification{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Data:        n.Data,
		IsRead:      n.IsRead,
		IsDismissed: n.IsDismissed,
		CreatedAt:   n.CreatedAt,
	}
}

func toAPIReceipt(r *models.Receipt) *api.Receipt {
	items := make([]*api.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = &api.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: int32(item.Quantity),
		}
	}

	var splits []*api.Split
	for _, s := range r.Splits {
		splits = append(splits, &api.Split{
			ID:             s.ID,
			UserID:         s.UserID,
			AmountOwed:     s.AmountOwed,
			PercentageOwed: s.PercentageOwed,
			AmountPaid:     s.AmountPaid,
			IsCustom:       s.IsCustom,
			Status:         string(s.Status),
			PaidAt:         s.PaidAt,
			Notes:          s.Notes,
		})
	}

	return &api.Receipt{
		ID:            r.ID,
		UserID:        r.UserID,
		GroupID:       r.GroupID,
		Merchant:      r.Merchant,
		TotalAmount:   r.TotalAmount,
		Currency:      r.Currency,
		Date:          models.FormatDate(r.Date),
		PaymentMethod: string(r.PaymentMethod),
		Tax:           r.Tax,
		Tip:           r.Tip,
		TaxLast:       r.TaxLast,
		ImageURL:      r.ImageURL,
		FolderID:      r.FolderID,
		FolderName:    r.FolderName,
		Color:         r.Color,
		Items:         items,
		Splits:        splits,
		CreatedAt:     r.CreatedAt,
	}
}

func toAPIReceipts(receipts []*models.Receipt) []*api.Receipt {
	out := make([]*api.Receipt, len(receipts))
	for i, r := range receipts {
		out[i] = toAPIReceipt(r)
	}
	return out
}

func fromAPIItems(items []*api.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, models.Item{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: int(item.Quantity),
		})
	}
	return out
}

// toAPIGroup resolves member display names. Members whose user row is gone
// are listed by id only.
func toAPIGroup(ctx context.Context, q storage.Querier, g *models.Group) (*api.Group, error) {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		member := &api.Member{ID: m.ID, UserID: m.UserID, JoinedAt: m.JoinedAt}
		user, err := q.GetUser(ctx, m.UserID)
		switch {
		case err == nil:
			member.DisplayName = user.DisplayName
			member.Email = user.Email
		case !errors.Is(err, errs.ErrNotFound):
			return nil, err
		}
		members[i] = member
	}
	return &api.Group{
		ID:        g.ID,
		CreatorID: g.CreatorID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}, nil
}

func toAPIFolder(f *models.Folder) *api.Folder {
	return &api.Folder{
		ID:        f.ID,
		Name:      f.Name,
		Color:     f.Color,
		IsDefault: f.IsDefault(),
		CreatedAt: f.CreatedAt,
	}
}

func toAPISubscription(s *models.Subscription) *api.Subscription {
	return &api.Subscription{
		ID:            s.ID,
		UserID:        s.UserID,
		GroupID:       s.GroupID,
		Merchant:      s.Merchant,
		TotalAmount:   s.TotalAmount,
		Currency:      s.Currency,
		RenewalDate:   models.FormatDate(s.RenewalDate),
		BillingPeriod: string(s.BillingPeriod),
		PaymentMethod: string(s.PaymentMethod),
		CreatedAt:     s.CreatedAt,
	}
}

func toAPISubscriptions(subs []*models.Subscription) []*api.Subscription {
	out := make([]*api.Subscription, len(subs))
	for i, s := range subs {
		out[i] = toAPISubscription(s)
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			UserID:      b.UserID,
			TotalOwed:   b.TotalOwed,
			TotalPaid:   b.TotalPaid,
			Outstanding: b.Outstanding,
		}
	}
	return out
}

func toAPIInsight(in *models.Insight) *api.Insight {
	folders := make(map[string]api.FolderAmount, len(in.FolderSpending))
	for name, fa := range in.FolderSpending {
		folders[name] = api.FolderAmount{Amount: fa.Amount, Color: fa.Color}
	}
	return &api.Insight{
		Period:                string(in.Period),
		Date:                  models.FormatDate(in.Date),
		Currency:              in.Currency,
		TotalSpent:            in.TotalSpent,
		DailySpending:         in.DailySpending,
		FolderSpending:        folders,
		MerchantSpending:      in.MerchantSpending,
		PaymentMethodSpending: in.PaymentMethodSpending,
		CurrencyDistribution:  in.CurrencyDistribution,
		UpdatedAt:             in.UpdatedAt,
	}
}

func toAPIDashboard(d *insights.Dashboard) *api.Dashboard {
	return &api.Dashboard{
		Currency:             d.Currency,
		TotalSpent:           d.TotalSpent,
		DailySpending:        d.DailySpending,
		CurrencyDistribution: d.CurrencyDistribution,
		PercentChange:        d.PercentChange,
		RecentReceipts:       toAPIReceipts(d.RecentReceipts),
		UpcomingRenewals:     toAPISubscriptions(d.UpcomingRenewals),
	}
}

// parseOptionalDate parses a YYYY-MM-DD value; empty yields the zero time.
func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, errs.NewValidationError("invalid %s %q: expected YYYY-MM-DD", field, s)
	}
	return d, nil
}

func nullDecimal(d *decimal.Decimal, clear bool) *decimal.NullDecimal {
	switch {
	case clear:
		return &decimal.NullDecimal{}
	case d != nil:
		return &decimal.NullDecimal{Decimal: *d, Valid: true}
	}
	return nil
}
