package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

var _ apiconnect.FolderServiceHandler = (*FolderService)(nil)

// FolderService implements the Connect FolderService.
type FolderService struct {
	store    storage.Store
	accounts *accounts
	insights Refresher
}

// NewFolderService creates a new FolderService.
func NewFolderService(store storage.Store, insights Refresher) *FolderService {
	return &FolderService{store: store, accounts: newAccounts(store), insights: insights}
}

// CreateFolder creates a folder for the caller.
func (s *FolderService) CreateFolder(ctx context.Context, req *connect.Request[api.CreateFolderRequest]) (*connect.Response[api.CreateFolderResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateFolder request received", "name", req.Msg.Name)

	folder, err := models.NewFolder(userID, req.Msg.Name, req.Msg.Color)
	if err != nil {
		return nil, connectError(err)
	}
	if err := s.store.CreateFolder(ctx, folder); err != nil {
		slog.Error("CreateFolder failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Folder created", "folder_id", folder.ID)
	return connect.NewResponse(&api.CreateFolderResponse{Folder: toAPIFolder(folder)}), nil
}

// ListFolders lists the caller's folders, All included.
func (s *FolderService) ListFolders(ctx context.Context, req *connect.Request[api.ListFoldersRequest]) (*connect.Response[api.ListFoldersResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	folders, err := s.store.ListFolders(ctx, userID)
	if err != nil {
		slog.Error("ListFolders failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Folder, len(folders))
	for i, f := range folders {
		out[i] = toAPIFolder(f)
	}
	return connect.NewResponse(&api.ListFoldersResponse{Folders: out}), nil
}

// UpdateFolder renames or recolors a folder. The All folder is fixed.
func (s *FolderService) UpdateFolder(ctx context.Context, req *connect.Request[api.UpdateFolderRequest]) (*connect.Response[api.UpdateFolderResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("folder_id", req.Msg.FolderID); err != nil {
		return nil, err
	}
	slog.Info("UpdateFolder request received", "folder_id", req.Msg.FolderID)

	var folder *models.Folder
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		f, err := ownedFolder(ctx, q, req.Msg.FolderID, userID)
		if err != nil {
			return err
		}
		update := models.FolderUpdate{Name: req.Msg.Name, Color: req.Msg.Color}
		if err := update.Apply(f); err != nil {
			return err
		}
		folder = f
		return q.UpdateFolder(ctx, f)
	})
	if err != nil {
		slog.Error("UpdateFolder failed", "folder_id", req.Msg.FolderID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Folder updated", "folder_id", folder.ID)
	refreshInsights(ctx, s.insights, userID)
	return connect.NewResponse(&api.UpdateFolderResponse{Folder: toAPIFolder(folder)}), nil
}

// DeleteFolder moves the folder's receipts to All, then deletes it.
func (s *FolderService) DeleteFolder(ctx context.Context, req *connect.Request[api.DeleteFolderRequest]) (*connect.Response[api.DeleteFolderResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("folder_id", req.Msg.FolderID); err != nil {
		return nil, err
	}
	slog.Info("DeleteFolder request received", "folder_id", req.Msg.FolderID)

	var reassigned int64
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		f, err := ownedFolder(ctx, q, req.Msg.FolderID, userID)
		if err != nil {
			return err
		}
		if f.IsDefault() {
			return errs.NewValidationError("folder %q cannot be deleted", models.DefaultFolderName)
		}
		def, err := q.EnsureDefaultFolder(ctx, userID)
		if err != nil {
			return err
		}
		if reassigned, err = q.ReassignFolderReceipts(ctx, f.ID, def); err != nil {
			return err
		}
		return q.DeleteFolder(ctx, f.ID)
	})
	if err != nil {
		slog.Error("DeleteFolder failed", "folder_id", req.Msg.FolderID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Folder deleted", "folder_id", req.Msg.FolderID, "reassigned_receipts", reassigned)
	refreshInsights(ctx, s.insights, userID)
	return connect.NewResponse(&api.DeleteFolderResponse{ReassignedReceipts: reassigned}), nil
}
