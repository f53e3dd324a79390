package feeds

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"newsdesk/models"

	"github.com/samber/lo"
)

// Folders groups saved items by explicit assignment
type Folders struct {
	mu      sync.RWMutex
	folders []models.Folder
	opts    options
}

func NewFolders(opts ...Option) *Folders {
	return &Folders{opts: buildOptions(opts)}
}

func (f *Folders) Create(name, icon string) (models.Folder, error) {
	return f.Add(models.Folder{Name: name, Icon: icon})
}

// Add stores a folder, assigning an id when it has none
func (f *Folders) Add(folder models.Folder) (models.Folder, error) {
	folder.Name = strings.TrimSpace(folder.Name)
	if folder.Name == "" {
		return models.Folder{}, &ValidationError{Field: "name", Message: "folder name must not be empty"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if folder.ID == "" {
		folder.ID = f.opts.newID()
	}
	if f.indexOf(folder.ID) >= 0 {
		return models.Folder{}, &ValidationError{Field: "id", Message: fmt.Sprintf("folder %q already exists", folder.ID)}
	}
	folder.ItemIDs = lo.Uniq(append([]string{}, folder.ItemIDs...))
	f.folders = append(f.folders, folder)

	return folder, nil
}

func (f *Folders) Remove(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return &NotFoundError{Kind: "folder", ID: id}
	}
	f.folders = slices.Delete(f.folders, i, i+1)
	return nil
}

func (f *Folders) Get(id string) (models.Folder, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := f.indexOf(id)
	if i < 0 {
		return models.Folder{}, &NotFoundError{Kind: "folder", ID: id}
	}
	return cloneFolder(f.folders[i]), nil
}

func (f *Folders) List() []models.Folder {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return lo.Map(f.folders, func(folder models.Folder, _ int) models.Folder {
		return cloneFolder(folder)
	})
}

// Assign puts an item in a folder. Assigning twice is a no-op.
func (f *Folders) Assign(folderID, itemID string) (models.Folder, error) {
	if itemID == "" {
		return models.Folder{}, &ValidationError{Field: "itemId", Message: "item id must not be empty"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(folderID)
	if i < 0 {
		return models.Folder{}, &NotFoundError{Kind: "folder", ID: folderID}
	}
	if !lo.Contains(f.folders[i].ItemIDs, itemID) {
		f.folders[i].ItemIDs = append(f.folders[i].ItemIDs, itemID)
	}
	return cloneFolder(f.folders[i]), nil
}

func (f *Folders) Unassign(folderID, itemID string) (models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(folderID)
	if i < 0 {
		return models.Folder{}, &NotFoundError{Kind: "folder", ID: folderID}
	}
	f.folders[i].ItemIDs = lo.Without(f.folders[i].ItemIDs, itemID)
	return cloneFolder(f.folders[i]), nil
}

// Items returns the ids assigned to a folder in assignment order
func (f *Folders) Items(folderID string) ([]string, error) {
	folder, err := f.Get(folderID)
	if err != nil {
		return nil, err
	}
	return folder.ItemIDs, nil
}

func (f *Folders) indexOf(id string) int {
	for i, folder := range f.folders {
		if folder.ID == id {
			return i
		}
	}
	return -1
}

func cloneFolder(folder models.Folder) models.Folder {
	folder.ItemIDs = append([]string{}, folder.ItemIDs...)
	return folder
}
