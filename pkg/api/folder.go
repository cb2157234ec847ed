package api

type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"isDefault"`
	CreatedAt int64  `json:"createdAt"`
}

type CreateFolderRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type CreateFolderResponse struct {
	Folder *Folder `json:"folder"`
}

type ListFoldersRequest struct{}

type ListFoldersResponse struct {
	Folders []*Folder `json:"folders"`
}

type UpdateFolderRequest struct {
	FolderID string  `json:"folderId"`
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
}

type UpdateFolderResponse struct {
	Folder *Folder `json:"folder"`
}

type DeleteFolderRequest struct {
	FolderID string `json:"folderId"`
}

// DeleteFolderResponse reports how many receipts moved to the All folder.
type DeleteFolderResponse struct {
	ReassignedReceipts int64 `json:"reassignedReceipts"`
}
