package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "catalog-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, store *SQLiteStore, id, name string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: name + "@example.com", DisplayName: name}
	if err := store.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser(%s) failed: %v", id, err)
	}
	return u
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, "alice", "alice")
	bob := mustUser(t, store, "bob", "bob")
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("UpsertUser keeps one row per id", func(t *testing.T) {
		again := &models.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice A"}
		if err := store.UpsertUser(ctx, again); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
		got, err := store.GetUser(ctx, "alice")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.DisplayName != "Alice A" {
			t.Errorf("DisplayName = %q, want Alice A", got.DisplayName)
		}
		if _, err := store.FindUserByEmail(ctx, "ALICE@example.com"); err != nil {
			t.Errorf("FindUserByEmail should ignore case: %v", err)
		}
		if _, err := store.GetUser(ctx, "nobody"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("GetUser(nobody) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("EnsureDefaultFolder is idempotent", func(t *testing.T) {
		first, err := store.EnsureDefaultFolder(ctx, alice.ID)
		if err != nil {
			t.Fatalf("EnsureDefaultFolder failed: %v", err)
		}
		second, err := store.EnsureDefaultFolder(ctx, alice.ID)
		if err != nil {
			t.Fatalf("EnsureDefaultFolder failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("default folder ids differ: %s vs %s", first.ID, second.ID)
		}
		folders, _ := store.ListFolders(ctx, alice.ID)
		if len(folders) != 1 || folders[0].Name != models.DefaultFolderName {
			t.Errorf("ListFolders = %+v, want only All", folders)
		}
	})

	t.Run("CreateFolder rejects duplicate names", func(t *testing.T) {
		if err := store.CreateFolder(ctx, &models.Folder{UserID: alice.ID, Name: "Food", Color: "#F00"}); err != nil {
			t.Fatalf("CreateFolder failed: %v", err)
		}
		err := store.CreateFolder(ctx, &models.Folder{UserID: alice.ID, Name: "Food", Color: "#0F0"})
		if !errs.IsValidation(err) {
			t.Errorf("duplicate CreateFolder error = %v, want validation error", err)
		}
	})

	t.Run("Receipt round trip with items", func(t *testing.T) {
		food := mustFolder(t, store, alice.ID, "Travel", "#00F")
		r := &models.Receipt{
			UserID: alice.ID, Merchant: "Cafe", TotalAmount: dec("12.50"), Currency: "EUR",
			Date: day, PaymentMethod: models.PaymentCash, Tip: decimal.NewNullDecimal(dec("1.50")),
			FolderID: food.ID, Color: food.Color,
			Items: []models.Item{
				{Name: "Coffee", Price: dec("3.00"), Quantity: 2},
				{Name: "Cake", Price: dec("5.00"), Quantity: 1},
			},
		}
		if err := store.CreateReceipt(ctx, r); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		got, err := store.GetReceipt(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if !got.TotalAmount.Equal(dec("12.50")) || got.Currency != "EUR" || !got.Date.Equal(day) {
			t.Errorf("GetReceipt = %+v", got)
		}
		if got.Tax.Valid || !got.Tip.Valid || !got.Tip.Decimal.Equal(dec("1.50")) {
			t.Errorf("Tax/Tip = %+v/%+v, want null/1.50", got.Tax, got.Tip)
		}
		if got.FolderName != "Travel" {
			t.Errorf("FolderName = %q, want Travel", got.FolderName)
		}
		if len(got.Items) != 2 || got.Items[0].Name != "Coffee" || got.Items[1].Name != "Cake" {
			t.Errorf("Items = %+v, want Coffee then Cake", got.Items)
		}

		got.Items = []models.Item{{Name: "Tea", Price: dec("2.00"), Quantity: 1}}
		if err := store.UpdateReceipt(ctx, got); err != nil {
			t.Fatalf("UpdateReceipt failed: %v", err)
		}
		updated, _ := store.GetReceipt(ctx, r.ID)
		if len(updated.Items) != 1 || updated.Items[0].Name != "Tea" {
			t.Errorf("items not replaced: %+v", updated.Items)
		}

		all, _ := store.EnsureDefaultFolder(ctx, alice.ID)
		n, err := store.ReassignFolderReceipts(ctx, food.ID, all)
		if err != nil || n != 1 {
			t.Fatalf("ReassignFolderReceipts = %d, %v", n, err)
		}
		if err := store.DeleteFolder(ctx, food.ID); err != nil {
			t.Fatalf("DeleteFolder failed: %v", err)
		}
		moved, _ := store.GetReceipt(ctx, r.ID)
		if moved.FolderID != all.ID || moved.Color != models.DefaultFolderColor {
			t.Errorf("receipt after folder delete = folder %s color %s", moved.FolderID, moved.Color)
		}

		list, err := store.ListUserReceipts(ctx, alice.ID, storage.ReceiptFilter{Since: day})
		if err != nil || len(list) != 1 {
			t.Errorf("ListUserReceipts = %d, %v", len(list), err)
		}
		list, _ = store.ListUserReceipts(ctx, alice.ID, storage.ReceiptFilter{Since: day.AddDate(0, 0, 1)})
		if len(list) != 0 {
			t.Errorf("ListUserReceipts after Since = %d, want 0", len(list))
		}
	})

	t.Run("Owner XOR is enforced by the schema", func(t *testing.T) {
		r := &models.Receipt{Merchant: "x", TotalAmount: dec("1"), Currency: "USD", Date: day}
		if err := store.CreateReceipt(ctx, r); err == nil {
			t.Error("CreateReceipt without owner should fail")
		}
	})

	t.Run("Group membership and splits", func(t *testing.T) {
		g := &models.Group{CreatorID: alice.ID, Name: "Flat"}
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := store.AddGroupMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: bob.ID}); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}
		err := store.AddGroupMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: bob.ID})
		if !errs.IsValidation(err) {
			t.Errorf("duplicate AddGroupMember error = %v, want validation error", err)
		}

		group, err := store.GetGroup(ctx, g.ID)
		if err != nil || len(group.Members) != 2 {
			t.Fatalf("GetGroup = %+v, %v", group, err)
		}

		r := &models.Receipt{GroupID: g.ID, Merchant: "Market", TotalAmount: dec("10.00"), Currency: "USD", Date: day}
		if err := store.CreateReceipt(ctx, r); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		splits := []models.Split{
			{GroupMemberID: group.Members[0].ID, AmountOwed: dec("5"), PercentageOwed: dec("50"), Status: models.SplitPending},
			{GroupMemberID: group.Members[1].ID, AmountOwed: dec("5"), PercentageOwed: dec("50"), Status: models.SplitPaid, Notes: "cash"},
		}
		if err := store.ReplaceSplits(ctx, r.ID, splits); err != nil {
			t.Fatalf("ReplaceSplits failed: %v", err)
		}

		got, _ := store.GetReceipt(ctx, r.ID)
		if len(got.Splits) != 2 {
			t.Fatalf("got %d splits, want 2", len(got.Splits))
		}
		if got.Splits[1].UserID != bob.ID || got.Splits[1].Notes != "cash" {
			t.Errorf("split for bob = %+v", got.Splits[1])
		}

		if err := store.RemoveGroupMember(ctx, g.ID, bob.ID); err != nil {
			t.Fatalf("RemoveGroupMember failed: %v", err)
		}
		remaining, _ := store.ListSplits(ctx, r.ID)
		if len(remaining) != 1 {
			t.Errorf("splits after member removal = %d, want 1", len(remaining))
		}

		groups, err := store.ListGroupsForUser(ctx, alice.ID)
		if err != nil || len(groups) != 1 || len(groups[0].Members) != 1 {
			t.Errorf("ListGroupsForUser = %+v, %v", groups, err)
		}
	})

	t.Run("UpsertInsight overwrites the same day", func(t *testing.T) {
		in := &models.Insight{
			UserID: alice.ID, Period: models.PeriodWeekly, Date: day, Currency: "USD",
			TotalSpent:     dec("10"),
			DailySpending:  map[string]decimal.Decimal{"2024-05-10": dec("10")},
			FolderSpending: map[string]models.FolderAmount{"Food": {Amount: dec("10"), Color: "#F00"}},
		}
		if err := store.UpsertInsight(ctx, in); err != nil {
			t.Fatalf("UpsertInsight failed: %v", err)
		}
		firstID := in.ID

		again := &models.Insight{UserID: alice.ID, Period: models.PeriodWeekly, Date: day, Currency: "EUR", TotalSpent: dec("20")}
		if err := store.UpsertInsight(ctx, again); err != nil {
			t.Fatalf("second UpsertInsight failed: %v", err)
		}
		if again.ID != firstID {
			t.Errorf("upsert changed row id: %s vs %s", again.ID, firstID)
		}

		got, err := store.LatestInsight(ctx, alice.ID, models.PeriodWeekly, day)
		if err != nil {
			t.Fatalf("LatestInsight failed: %v", err)
		}
		if got.Currency != "EUR" || !got.TotalSpent.Equal(dec("20")) {
			t.Errorf("LatestInsight = %+v, want overwritten row", got)
		}
		if _, err := store.LatestInsight(ctx, alice.ID, models.PeriodWeekly, day.AddDate(0, 0, -1)); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("LatestInsight before first snapshot error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Subscriptions visible through groups", func(t *testing.T) {
		g := &models.Group{CreatorID: bob.ID, Name: "Streaming"}
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		for i, sub := range []*models.Subscription{
			{UserID: alice.ID, Merchant: "Gym", TotalAmount: dec("30"), Currency: "USD", RenewalDate: day.AddDate(0, 0, 3), BillingPeriod: models.BillingMonthly},
			{UserID: alice.ID, Merchant: "Old", TotalAmount: dec("5"), Currency: "USD", RenewalDate: day.AddDate(0, 0, -3), BillingPeriod: models.BillingMonthly},
			{GroupID: g.ID, Merchant: "Netflix", TotalAmount: dec("15"), Currency: "USD", RenewalDate: day.AddDate(0, 0, 1), BillingPeriod: models.BillingMonthly},
		} {
			if err := store.CreateSubscription(ctx, sub); err != nil {
				t.Fatalf("CreateSubscription %d failed: %v", i, err)
			}
		}

		upcoming, err := store.ListUpcomingRenewals(ctx, alice.ID, day, 5)
		if err != nil || len(upcoming) != 1 || upcoming[0].Merchant != "Gym" {
			t.Errorf("alice upcoming = %+v, %v", upcoming, err)
		}

		if err := store.AddGroupMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: alice.ID}); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}
		upcoming, _ = store.ListUpcomingRenewals(ctx, alice.ID, day, 5)
		if len(upcoming) != 2 || upcoming[0].Merchant != "Netflix" {
			t.Errorf("alice upcoming with group = %+v", upcoming)
		}

		due, _ := store.ListRenewalsOn(ctx, day.AddDate(0, 0, 1))
		if len(due) != 1 || due[0].Merchant != "Netflix" {
			t.Errorf("ListRenewalsOn = %+v", due)
		}
	})

	t.Run("Notifications read and dismiss", func(t *testing.T) {
		n := &models.Notification{UserID: bob.ID, Type: models.NotificationMemberAdded, Title: "t", Message: "m", Data: map[string]string{"group_id": "g"}}
		if err := store.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification failed: %v", err)
		}
		if err := store.MarkNotificationRead(ctx, alice.ID, n.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("marking another user's notification error = %v, want ErrNotFound", err)
		}
		if err := store.DismissNotification(ctx, bob.ID, n.ID); err != nil {
			t.Fatalf("DismissNotification failed: %v", err)
		}
		visible, _ := store.ListNotifications(ctx, bob.ID, false)
		all, _ := store.ListNotifications(ctx, bob.ID, true)
		if len(visible) != 0 || len(all) != 1 || all[0].Data["group_id"] != "g" || !all[0].IsRead {
			t.Errorf("notifications visible=%d all=%+v", len(visible), all)
		}
	})
}

func TestWithTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustUser(t, store, "carol", "carol")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(q storage.Querier) error {
		if _, err := q.EnsureDefaultFolder(ctx, "carol"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}
	folders, _ := store.ListFolders(ctx, "carol")
	if len(folders) != 0 {
		t.Errorf("folders after rollback = %d, want 0", len(folders))
	}
}

func mustFolder(t *testing.T, store *SQLiteStore, userID, name, color string) *models.Folder {
	t.Helper()
	f := &models.Folder{UserID: userID, Name: name, Color: color}
	if err := store.CreateFolder(context.Background(), f); err != nil {
		t.Fatalf("CreateFolder(%s) failed: %v", name, err)
	}
	return f
}
