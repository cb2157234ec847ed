package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/pkg/api"
)

func (e *testEnv) createFolder(t *testing.T, userID, name, color string) *api.Folder {
	t.Helper()
	resp, err := e.folderClient.CreateFolder(context.Background(), as(userID, &api.CreateFolderRequest{Name: name, Color: color}))
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	return resp.Msg.Folder
}

func TestCreateFolder(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	food := env.createFolder(t, "alice", " Food ", "#FF5722")
	if food.Name != "Food" || food.Color != "#FF5722" || food.IsDefault {
		t.Errorf("unexpected folder %+v", food)
	}
	plain := env.createFolder(t, "alice", "Misc", "")
	if plain.Color != models.DefaultFolderColor {
		t.Errorf("color: expected default %s, got %s", models.DefaultFolderColor, plain.Color)
	}

	tests := []struct {
		name string
		req  *api.CreateFolderRequest
	}{
		{"empty name", &api.CreateFolderRequest{Name: "  "}},
		{"reserved name", &api.CreateFolderRequest{Name: "all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.folderClient.CreateFolder(ctx, as("alice", tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	resp, err := env.folderClient.ListFolders(ctx, as("alice", &api.ListFoldersRequest{}))
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(resp.Msg.Folders) != 3 {
		t.Errorf("expected All plus 2 folders, got %d", len(resp.Msg.Folders))
	}
}

func TestUpdateFolder(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	folder := env.createFolder(t, "alice", "Food", "#FF5722")

	name := "Groceries"
	color := "#4CAF50"
	resp, err := env.folderClient.UpdateFolder(ctx, as("alice", &api.UpdateFolderRequest{
		FolderID: folder.ID, Name: &name, Color: &color,
	}))
	if err != nil {
		t.Fatalf("UpdateFolder failed: %v", err)
	}
	if resp.Msg.Folder.Name != name || resp.Msg.Folder.Color != color {
		t.Errorf("folder not updated: %+v", resp.Msg.Folder)
	}

	_, err = env.folderClient.UpdateFolder(ctx, as("bob", &api.UpdateFolderRequest{FolderID: folder.ID, Name: &name}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.folderClient.UpdateFolder(ctx, as("alice", &api.UpdateFolderRequest{FolderID: "missing", Name: &name}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDefaultFolderIsFixed(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	list, err := env.folderClient.ListFolders(ctx, as("alice", &api.ListFoldersRequest{}))
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	all := list.Msg.Folders[0]
	if !all.IsDefault || all.Name != models.DefaultFolderName {
		t.Fatalf("expected the All folder, got %+v", all)
	}

	name := "Everything"
	_, err = env.folderClient.UpdateFolder(ctx, as("alice", &api.UpdateFolderRequest{FolderID: all.ID, Name: &name}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.folderClient.DeleteFolder(ctx, as("alice", &api.DeleteFolderRequest{FolderID: all.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteFolderReassignsReceipts(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	folder := env.createFolder(t, "alice", "Travel", "#2196F3")

	var ids []string
	for _, merchant := range []string{"Airline", "Hotel"} {
		resp, err := env.receiptClient.CreateReceipt(ctx, as("alice", &api.CreateReceiptRequest{
			Merchant:    merchant,
			TotalAmount: decimal.NewFromInt(200),
			Currency:    "USD",
			Date:        today(),
			FolderID:    folder.ID,
		}))
		if err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		if resp.Msg.Receipt.Color != folder.Color {
			t.Errorf("receipt color: expected folder color %s, got %s", folder.Color, resp.Msg.Receipt.Color)
		}
		ids = append(ids, resp.Msg.Receipt.ID)
	}

	_, err := env.folderClient.DeleteFolder(ctx, as("bob", &api.DeleteFolderRequest{FolderID: folder.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := env.folderClient.DeleteFolder(ctx, as("alice", &api.DeleteFolderRequest{FolderID: folder.ID}))
	if err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}
	if resp.Msg.ReassignedReceipts != 2 {
		t.Errorf("expected 2 reassigned receipts, got %d", resp.Msg.ReassignedReceipts)
	}

	for _, id := range ids {
		got, err := env.receiptClient.GetReceipt(ctx, as("alice", &api.GetReceiptRequest{ReceiptID: id}))
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		r := got.Msg.Receipt
		if r.FolderName != models.DefaultFolderName || r.Color != models.DefaultFolderColor {
			t.Errorf("receipt %s: expected All with default color, got %s %s", id, r.FolderName, r.Color)
		}
	}

	list, err := env.folderClient.ListFolders(ctx, as("alice", &api.ListFoldersRequest{}))
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(list.Msg.Folders) != 1 {
		t.Errorf("expected only All to remain, got %d folders", len(list.Msg.Folders))
	}
}
